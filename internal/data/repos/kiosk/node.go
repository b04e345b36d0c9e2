package kiosk

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/platform/dbctx"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

const siblingOrder = "sort_order ASC, created_at ASC, id ASC"

// NodeRepo persists content tree nodes. It has no knowledge of blob storage.
type NodeRepo interface {
	Create(dbc dbctx.Context, node *types.Node) error

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Node, error)
	GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.Node, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Node, error)
	GetChildren(dbc dbctx.Context, parentID uuid.UUID) ([]*types.Node, error)
	GetRoots(dbc dbctx.Context) ([]*types.Node, error)
	ListAll(dbc dbctx.Context) ([]*types.Node, error)
	ListDetached(dbc dbctx.Context) ([]*types.Node, error)

	Save(dbc dbctx.Context, node *types.Node) error
	RebuildChildren(dbc dbctx.Context, parentID uuid.UUID) ([]uuid.UUID, error)

	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type nodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNodeRepo(db *gorm.DB, baseLog *logger.Logger) NodeRepo {
	return &nodeRepo{db: db, log: baseLog.With("repo", "NodeRepo")}
}

func (r *nodeRepo) Create(dbc dbctx.Context, node *types.Node) error {
	return dbc.DB(r.db).Create(node).Error
}

func (r *nodeRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Node, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Node
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// GetByIDForUpdate row-locks the node on Postgres; SQLite serializes writers anyway.
func (r *nodeRepo) GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.Node, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Node
	if err := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *nodeRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Node, error) {
	var out []*types.Node
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Order(siblingOrder).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *nodeRepo) GetChildren(dbc dbctx.Context, parentID uuid.UUID) ([]*types.Node, error) {
	var out []*types.Node
	if parentID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("parent_id = ?", parentID).Order(siblingOrder).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *nodeRepo) GetRoots(dbc dbctx.Context) ([]*types.Node, error) {
	var out []*types.Node
	if err := dbc.DB(r.db).Where("parent_id IS NULL").Order(siblingOrder).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll reads the whole tree in one statement so callers see a single snapshot.
func (r *nodeRepo) ListAll(dbc dbctx.Context) ([]*types.Node, error) {
	var out []*types.Node
	if err := dbc.DB(r.db).Order(siblingOrder).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListDetached returns nodes whose parent no longer exists. Deleting a node
// leaves its subtree in place, so these are unreachable from the roots.
func (r *nodeRepo) ListDetached(dbc dbctx.Context) ([]*types.Node, error) {
	var out []*types.Node
	t := dbc.DB(r.db)
	sub := t.Session(&gorm.Session{NewDB: true}).Model(&types.Node{}).Select("id")
	if err := t.
		Where("parent_id IS NOT NULL AND parent_id NOT IN (?)", sub).
		Order(siblingOrder).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *nodeRepo) Save(dbc dbctx.Context, node *types.Node) error {
	return dbc.DB(r.db).Save(node).Error
}

// RebuildChildren rewrites parent.children_ids from the rows that point at it,
// in sibling order, so the list never names a node with a different parent.
func (r *nodeRepo) RebuildChildren(dbc dbctx.Context, parentID uuid.UUID) ([]uuid.UUID, error) {
	t := dbc.DB(r.db)
	var ids []uuid.UUID
	if err := t.Model(&types.Node{}).
		Where("parent_id = ?", parentID).
		Order(siblingOrder).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	children := datatypes.JSONSlice[uuid.UUID](ids)
	if children == nil {
		children = datatypes.JSONSlice[uuid.UUID]{}
	}
	res := t.Model(&types.Node{}).
		Where("id = ?", parentID).
		Update("children_ids", children)
	if res.Error != nil {
		return nil, res.Error
	}
	return ids, nil
}

func (r *nodeRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.Node{}).Error
}
