// internal/models/post.go
package models

// PostType classifies a post. Only PROBLEM posts accept applications.
type PostType string

const (
	PostTypeProblem  PostType = "PROBLEM"
	PostTypeSolution PostType = "SOLUTION"
	PostTypeGeneral  PostType = "GENERAL"
)

type Post struct {
	ID                string   `json:"id"`
	AuthorID          string   `json:"authorId"`
	AuthorName        string   `json:"authorName"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Type              string   `json:"postType"`
	Tags              []string `json:"tags"`
	ApplicationsCount int      `json:"applicationsCount"`
	CreatedAt         string   `json:"createdAt"` // ISO 8601
}

// TypeEnum returns the typed post kind, falling back to GENERAL for
// unknown values stored by older clients.
func (p *Post) TypeEnum() PostType {
	switch PostType(p.Type) {
	case PostTypeProblem, PostTypeSolution, PostTypeGeneral:
		return PostType(p.Type)
	default:
		return PostTypeGeneral
	}
}

// AcceptsApplications reports whether developers may apply to this post.
func (p *Post) AcceptsApplications() bool {
	return p.TypeEnum() == PostTypeProblem
}
