package services

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/kiosk-backend/internal/data/repos"
	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
	"github.com/yungbote/kiosk-backend/internal/platform/dbctx"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

// AuditReport compares the bucket against every key the records reference.
type AuditReport struct {
	Prefix         string      `json:"prefix"`
	StoredKeys     int         `json:"stored_keys"`
	ReferencedKeys int         `json:"referenced_keys"`
	Unreferenced   []string    `json:"unreferenced"`
	Missing        []string    `json:"missing"`
	DetachedNodes  []uuid.UUID `json:"detached_nodes"`
}

// StorageAudit finds blobs that no record points at (left behind by a failed
// reap) and records that point at blobs that are gone.
type StorageAudit interface {
	Run(ctx context.Context) (*AuditReport, error)
}

type storageAudit struct {
	log   *logger.Logger
	blobs BlobStore
	root  string
	nodes repos.NodeRepo
	vvips repos.VVIPRepo
	home  repos.HomeRepo
	qr    repos.QRRepo
}

func NewStorageAudit(
	log *logger.Logger,
	blobs BlobStore,
	rootFolder string,
	nodes repos.NodeRepo,
	vvips repos.VVIPRepo,
	home repos.HomeRepo,
	qr repos.QRRepo,
) StorageAudit {
	return &storageAudit{
		log:   log.With("service", "StorageAudit"),
		blobs: blobs,
		root:  strings.Trim(strings.TrimSpace(rootFolder), "/"),
		nodes: nodes,
		vvips: vvips,
		home:  home,
		qr:    qr,
	}
}

func (a *storageAudit) Run(ctx context.Context) (*AuditReport, error) {
	const op = "storage.audit"
	prefix := ""
	if a.root != "" {
		prefix = a.root + "/"
	}
	var (
		stored     []string
		referenced []string
		detached   []uuid.UUID
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		keys, err := a.blobs.ListKeys(gctx, prefix)
		if err != nil {
			return apierr.Storage(op, err)
		}
		stored = keys
		return nil
	})
	g.Go(func() error {
		keys, err := a.referencedKeys(dbctx.Context{Ctx: gctx})
		if err != nil {
			return apierr.FromDB(op, err)
		}
		referenced = keys
		return nil
	})
	g.Go(func() error {
		rows, err := a.nodes.ListDetached(dbctx.Context{Ctx: gctx})
		if err != nil {
			return apierr.FromDB(op, err)
		}
		for _, n := range rows {
			detached = append(detached, n.ID)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	inScope := referenced[:0:0]
	for _, k := range referenced {
		if strings.HasPrefix(k, prefix) {
			inScope = append(inScope, k)
		}
	}
	report := &AuditReport{
		Prefix:         prefix,
		StoredKeys:     len(stored),
		ReferencedKeys: len(referenced),
		Unreferenced:   sortedDiff(stored, inScope),
		Missing:        sortedDiff(inScope, stored),
		DetachedNodes:  detached,
	}
	a.log.Info("storage audit finished",
		"prefix", prefix,
		"stored", report.StoredKeys,
		"unreferenced", len(report.Unreferenced),
		"missing", len(report.Missing),
		"detached_nodes", len(report.DetachedNodes),
	)
	return report, nil
}

func (a *storageAudit) referencedKeys(dbc dbctx.Context) ([]string, error) {
	var keys []string
	nodes, err := a.nodes.ListAll(dbc)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		keys = append(keys, n.BlobKeys()...)
	}
	vvips, err := a.vvips.List(dbc)
	if err != nil {
		return nil, err
	}
	for _, v := range vvips {
		keys = append(keys, v.BlobKeys()...)
	}
	home, err := a.home.Get(dbc)
	if err != nil {
		return nil, err
	}
	keys = append(keys, home.BlobKeys()...)
	qr, err := a.qr.Get(dbc)
	if err != nil {
		return nil, err
	}
	if qr != nil && qr.Key != "" {
		keys = append(keys, qr.Key)
	}
	return keys, nil
}

func sortedDiff(a, b []string) []string {
	out := slices.Clone(a)
	slices.Sort(out)
	out = slices.Compact(out)
	set := make(map[string]struct{}, len(b))
	for _, k := range b {
		set[k] = struct{}{}
	}
	return slices.DeleteFunc(out, func(k string) bool {
		_, ok := set[k]
		return ok
	})
}
