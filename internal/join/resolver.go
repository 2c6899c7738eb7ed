// Package join emulates many-to-many relations over a store that only exposes
// link rows: fetch the links for a parent, collect child ids, batch-fetch the
// children and merge them in link order.
package join

import (
	"context"

	"relief-portal-go/internal/remote"

	"golang.org/x/sync/errgroup"
)

// Link describes one link table.
type Link struct {
	Table        string
	ParentColumn string
	ChildColumn  string
}

// ChildFetcher loads children by id in a single call. Ids it cannot find are
// simply absent from the result.
type ChildFetcher[C any] func(ctx context.Context, ids []string) ([]C, error)

// Hop maps the children reached through Link to ids of the final target,
// e.g. donation ids to the organizations running them.
type Hop struct {
	Link    Link
	Targets func(ctx context.Context, ids []string) ([]string, error)
}

// ChildIDs returns the deduplicated child ids linked to parentID, in order of
// first appearance.
func ChildIDs(ctx context.Context, r remote.Reader, link Link, parentID string) ([]string, error) {
	query := remote.From(link.Table).
		Select(link.ChildColumn).
		Eq(link.ParentColumn, parentID)

	var rows []map[string]any
	if err := r.Select(ctx, query, &rows); err != nil {
		return nil, &ResolutionError{Relation: link.Table, Step: StepLinks, ParentID: parentID, Err: err}
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if id, ok := remote.IDString(row[link.ChildColumn]); ok {
			ids = append(ids, id)
		}
	}
	return Unique(ids), nil
}

// Resolve returns the children linked to parentID. No link rows means no
// children and no second call; dangling child ids are dropped.
func Resolve[C any](ctx context.Context, r remote.Reader, link Link, parentID string, fetch ChildFetcher[C], idOf func(C) string) ([]C, error) {
	ids, err := ChildIDs(ctx, r, link, parentID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []C{}, nil
	}

	children, err := fetch(ctx, ids)
	if err != nil {
		return nil, &ResolutionError{Relation: link.Table, Step: StepChildren, ParentID: parentID, Err: err}
	}
	return InOrder(ids, children, idOf), nil
}

// ResolveVia follows several link paths from parentID, unions the target ids
// they reach and materializes each target once with a single fetch.
func ResolveVia[C any](ctx context.Context, r remote.Reader, relation, parentID string, hops []Hop, fetch ChildFetcher[C], idOf func(C) string) ([]C, error) {
	found := make([][]string, len(hops))

	g, gctx := errgroup.WithContext(ctx)
	for i, hop := range hops {
		g.Go(func() error {
			ids, err := ChildIDs(gctx, r, hop.Link, parentID)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				return nil
			}
			targets, err := hop.Targets(gctx, ids)
			if err != nil {
				return &ResolutionError{Relation: hop.Link.Table, Step: StepIntermediate, ParentID: parentID, Err: err}
			}
			found[i] = targets
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := Unique(found...)
	if len(ids) == 0 {
		return []C{}, nil
	}

	targets, err := fetch(ctx, ids)
	if err != nil {
		return nil, &ResolutionError{Relation: relation, Step: StepChildren, ParentID: parentID, Err: err}
	}
	return InOrder(ids, targets, idOf), nil
}

// Unique concatenates the groups, dropping empty and repeated ids while
// keeping first-appearance order.
func Unique(groups ...[]string) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0)
	for _, group := range groups {
		for _, id := range group {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			result = append(result, id)
		}
	}
	return result
}

// InOrder arranges children in ids order, dropping ids without a child.
func InOrder[C any](ids []string, children []C, idOf func(C) string) []C {
	byID := make(map[string]C, len(children))
	for _, child := range children {
		id := idOf(child)
		if _, ok := byID[id]; !ok {
			byID[id] = child
		}
	}

	result := make([]C, 0, len(ids))
	for _, id := range ids {
		if child, ok := byID[id]; ok {
			result = append(result, child)
		}
	}
	return result
}
