package services

import (
	"context"
	"slices"

	"github.com/abanwa/twitter/internal/server/models"
	"github.com/abanwa/twitter/internal/server/repositories/users"
)

// refs loads the given users in one call. Unknown ids are left out; the
// caller falls back to an id-only reference.
func refs(ctx context.Context, repo users.Repository, ids []string) (map[string]models.UserRef, error) {
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return map[string]models.UserRef{}, nil
	}

	found, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr("get users", err)
	}

	out := make(map[string]models.UserRef, len(found))
	for _, u := range found {
		out[u.ID] = u.Ref()
	}
	return out, nil
}

func refOf(m map[string]models.UserRef, id string) models.UserRef {
	if r, ok := m[id]; ok {
		return r
	}
	return models.UserRef{ID: id}
}

// postViews populates authors and comment authors, keeping input order.
func postViews(ctx context.Context, repo users.Repository, posts []*models.Post) ([]models.PostView, error) {
	var ids []string
	for _, p := range posts {
		ids = append(ids, p.Author)
		for _, c := range p.Comments {
			ids = append(ids, c.Author)
		}
	}

	m, err := refs(ctx, repo, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, postView(m, p))
	}
	return views, nil
}

func postView(m map[string]models.UserRef, p *models.Post) models.PostView {
	likes := p.Likes
	if likes == nil {
		likes = []string{}
	}
	comments := make([]models.CommentView, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, models.CommentView{
			ID:        c.ID,
			User:      refOf(m, c.Author),
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	return models.PostView{
		ID:        p.ID,
		User:      refOf(m, p.Author),
		Text:      p.Text,
		Img:       p.Img,
		Likes:     likes,
		Comments:  comments,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
