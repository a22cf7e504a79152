package syncrun

import (
	"context"

	"notionbrainz/internal/config"
	"notionbrainz/internal/logging"
	"notionbrainz/internal/notion"
)

// linkedPage is the part of a related page the resolver needs.
type linkedPage struct {
	id    string
	title string
	mbid  string
}

// completeRelations replaces each truncated relation under keys with the full
// reference list. A relation that cannot be loaded keeps its has_more flag,
// which keeps it out of the merged write.
func (r *Runner) completeRelations(ctx context.Context, page *notion.Page, keys []string) {
	for _, key := range keys {
		prop, ok := page.Property(key)
		if !ok || !prop.HasMore {
			continue
		}
		ids, err := r.deps.Store.RelationIDs(ctx, page.ID, prop.ID)
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, r.logger), "relation list unavailable", "relation_load_failed",
				logging.String("property", key),
				logging.Error(err),
				logging.String(logging.FieldImpact, "relation is left unchanged on this page"),
			)
			continue
		}
		refs := make([]notion.Ref, 0, len(ids))
		for _, id := range ids {
			refs = append(refs, notion.Ref{ID: id})
		}
		prop.Relation = refs
		prop.HasMore = false
		page.Properties[key] = prop
	}
}

// linked reads every page referenced by field on page. field belongs to the
// owner database; target is the database the related pages live in. Pages
// that cannot be fetched are logged and left out.
func (r *Runner) linked(ctx context.Context, page *notion.Page, owner config.Kind, field string, target config.Kind) []linkedPage {
	key, ok := r.deps.Bindings[owner].Key(field)
	if !ok {
		return nil
	}
	ids := page.RelationIDs(key)
	out := make([]linkedPage, 0, len(ids))
	for _, id := range ids {
		if lp, ok := r.readLinked(ctx, id, target); ok {
			out = append(out, lp)
		}
	}
	return out
}

// firstLinked reads only the first page referenced by field.
func (r *Runner) firstLinked(ctx context.Context, page *notion.Page, owner config.Kind, field string, target config.Kind) (linkedPage, bool) {
	key, ok := r.deps.Bindings[owner].Key(field)
	if !ok {
		return linkedPage{}, false
	}
	ids := page.RelationIDs(key)
	if len(ids) == 0 {
		return linkedPage{}, false
	}
	return r.readLinked(ctx, ids[0], target)
}

func (r *Runner) readLinked(ctx context.Context, id string, target config.Kind) (linkedPage, bool) {
	related, err := r.deps.Store.Page(ctx, id)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "linked page unavailable", "linked_page_failed",
			logging.String("linked_page_id", id),
			logging.String(logging.FieldDatabase, string(target)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "match ignores this linked page"),
		)
		return linkedPage{}, false
	}
	lp := linkedPage{id: related.ID}
	binding := r.deps.Bindings[target]
	if title, ok := binding.Title(related); ok {
		lp.title = title
	} else {
		lp.title = related.Title()
	}
	lp.mbid = binding.StoredID(related)
	return lp, true
}
