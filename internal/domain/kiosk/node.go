package kiosk

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
)

const (
	DefaultNodeX = 50
	DefaultNodeY = 50
)

// Node is one entry of the kiosk menu. ChildrenIDs is the display ordering of
// its children; Children is only populated on read projections.
type Node struct {
	ID          uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string                         `gorm:"not null" json:"title"`
	Order       int                            `gorm:"column:sort_order;not null;default:0;index" json:"order"`
	ParentID    *uuid.UUID                     `gorm:"type:uuid;index" json:"parent_id"`
	ChildrenIDs datatypes.JSONSlice[uuid.UUID] `gorm:"column:children_ids" json:"children_ids"`
	Video       *MediaRef                      `gorm:"column:video;serializer:json" json:"video"`
	Action      *Action                        `gorm:"column:action;serializer:json" json:"action"`
	X           float64                        `gorm:"not null" json:"x"`
	Y           float64                        `gorm:"not null" json:"y"`
	IsActive    bool                           `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time                      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time                      `gorm:"not null" json:"updated_at"`

	Children []*Node `gorm:"-" json:"children,omitempty"`
}

func (Node) TableName() string { return "kiosk_node" }

func (n *Node) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.ChildrenIDs == nil {
		n.ChildrenIDs = datatypes.JSONSlice[uuid.UUID]{}
	}
	return nil
}

func (n *Node) IsRoot() bool { return n.ParentID == nil }

// Validate checks the structural rules every persisted node must satisfy.
func (n *Node) Validate() error {
	const op = "node.validate"
	if strings.TrimSpace(n.Title) == "" {
		return apierr.Validation(op, "title is required")
	}
	if n.Video != nil && !n.Video.Present() {
		return apierr.Validation(op, "video requires a key")
	}
	if n.ParentID != nil {
		if *n.ParentID == n.ID {
			return apierr.Validation(op, "node cannot be its own parent")
		}
		if n.Action == nil {
			return apierr.Validation(op, "child nodes require an action")
		}
		if !n.Video.Present() && n.Action.Type != ActionSlider {
			return apierr.Validation(op, "child nodes require a video unless the action is a slider")
		}
	}
	return n.Action.Validate()
}

func (n *Node) HasChild(id uuid.UUID) bool {
	for _, c := range n.ChildrenIDs {
		if c == id {
			return true
		}
	}
	for _, c := range n.Children {
		if c != nil && c.ID == id {
			return true
		}
	}
	return false
}

// BlobKeys lists every storage key this node owns, descendants excluded.
func (n *Node) BlobKeys() []string {
	if n == nil {
		return nil
	}
	return append(n.Video.BlobKeys(), n.Action.BlobKeys()...)
}

// Clone deep-copies the node's own fields; Children is not copied.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.ParentID != nil {
		p := *n.ParentID
		c.ParentID = &p
	}
	c.ChildrenIDs = append(datatypes.JSONSlice[uuid.UUID]{}, n.ChildrenIDs...)
	c.Video = n.Video.clone()
	c.Action = n.Action.clone()
	c.Children = nil
	return &c
}

// NodeInput is the payload for creating a node.
type NodeInput struct {
	Title    string     `json:"title"`
	ParentID *uuid.UUID `json:"parent_id"`
	Order    *int       `json:"order"`
	Video    *MediaRef  `json:"video"`
	Action   *Action    `json:"action"`
	X        *float64   `json:"x"`
	Y        *float64   `json:"y"`
}

func (in NodeInput) Build() *Node {
	n := &Node{
		Title:    strings.TrimSpace(in.Title),
		ParentID: in.ParentID,
		Video:    in.Video,
		Action:   in.Action,
		X:        DefaultNodeX,
		Y:        DefaultNodeY,
		IsActive: true,
	}
	if in.Order != nil {
		n.Order = *in.Order
	}
	if in.X != nil {
		n.X = *in.X
	}
	if in.Y != nil {
		n.Y = *in.Y
	}
	n.Action.Normalize()
	return n
}
