package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

// Admin is what seeding needs from the kiosk API.
type Admin interface {
	CreateNode(ctx context.Context, in kiosk.NodeInput) (*kiosk.Node, error)
	ReplaceHome(ctx context.Context, in kiosk.HomeInput) (*kiosk.HomeConfig, error)
}

type Result struct {
	Nodes int
	Home  bool
}

// Apply creates the manifest's nodes parent-first, then replaces home. It
// stops at the first failure; nodes created before it stay in place.
func Apply(ctx context.Context, log *logger.Logger, api Admin, m *Manifest, urls URLFunc) (Result, error) {
	var res Result
	if urls == nil {
		urls = BaseURL("")
	}

	var create func(nodes []yamlNode, parent *uuid.UUID, path string) error
	create = func(nodes []yamlNode, parent *uuid.UUID, path string) error {
		for i, n := range nodes {
			where := fmt.Sprintf("%s/%s", path, n.Title)
			created, err := api.CreateNode(ctx, urls.nodeInput(n, parent, i))
			if err != nil {
				return fmt.Errorf("create %q: %w", where, err)
			}
			res.Nodes++
			log.Debug("Seeded node", "path", where, "node_id", created.ID)
			if len(n.Children) == 0 {
				continue
			}
			id := created.ID
			if err := create(n.Children, &id, where); err != nil {
				return err
			}
		}
		return nil
	}
	if err := create(m.Nodes, nil, ""); err != nil {
		return res, err
	}

	if m.Home != nil {
		if _, err := api.ReplaceHome(ctx, urls.homeInput(m.Home)); err != nil {
			return res, fmt.Errorf("replace home: %w", err)
		}
		res.Home = true
	}
	log.Info("Seed applied", "nodes", res.Nodes, "home", res.Home)
	return res, nil
}
