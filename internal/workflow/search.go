package workflow

import (
	"context"
	"fmt"

	"comicgrabr/internal/downloader"
	"comicgrabr/internal/services/airdcpp"
)

// NewSearchService adapts the AirDC++ client to the orchestrator's search
// boundary. The client's ranking is preserved: candidates come back in the
// order the client returned them.
func NewSearchService(client *airdcpp.Client) downloader.SearchService {
	return &airdcppSearch{client: client}
}

type airdcppSearch struct {
	client *airdcpp.Client
}

func (a *airdcppSearch) Find(ctx context.Context, query string) ([]downloader.Candidate, error) {
	results, err := a.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates := make([]downloader.Candidate, 0, len(results))
	for _, result := range results {
		candidates = append(candidates, downloader.Candidate{
			Label:         result.Name,
			ExistsOnDisk:  result.OnDisk,
			ExistsInQueue: result.InQueue,
			Handle:        result,
		})
	}
	return candidates, nil
}

func (a *airdcppSearch) Enqueue(ctx context.Context, candidate downloader.Candidate) error {
	result, ok := candidate.Handle.(airdcpp.Result)
	if !ok {
		return fmt.Errorf("candidate %q does not carry an AirDC++ result", candidate.Label)
	}
	return a.client.Enqueue(ctx, result)
}
