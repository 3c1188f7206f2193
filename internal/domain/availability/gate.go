package availability

import "context"

type statusReader interface {
	Get(ctx context.Context, providerID int64) (*StylistWorkStatus, error)
}

// Gate answers whether a stylist accepts new booking requests: only an
// explicit "available" status does.
type Gate struct {
	repo statusReader
}

func NewGate(repo statusReader) *Gate {
	return &Gate{repo: repo}
}

func (g *Gate) IsAvailable(ctx context.Context, providerID int64) (bool, error) {
	ws, err := g.repo.Get(ctx, providerID)
	if err != nil {
		return false, err
	}
	return ws.Status == StatusAvailable, nil
}
