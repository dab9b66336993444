// Package recommendations implements the duplicate check and insert statements
// for the recommendations table.
package recommendations

import (
	"context"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/curator/internal/entities"
)

// Repository handles recommendation reads and writes.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new recommendations repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Exists reports whether any stored title contains the given title, ignoring case.
//
// The trimmed title is used as a LIKE pattern, so a new title that is a substring
// of a stored one (or contains LIKE wildcards) also counts as a duplicate.
// SQLite only folds ASCII letters, so on sqlite the pattern is matched in Go.
func (r *Repository) Exists(ctx context.Context, title string) (bool, error) {
	pattern := "%" + strings.TrimSpace(title) + "%"

	if r.db.Dialector.Name() == "sqlite" {
		return r.existsFolded(ctx, pattern)
	}

	var titles []string
	err := r.db.WithContext(ctx).
		Model(&entities.Recommendation{}).
		Where("LOWER(title) LIKE LOWER(?)", pattern).
		Limit(1).
		Pluck("title", &titles).Error
	if err != nil {
		return false, err
	}
	return len(titles) > 0, nil
}

func (r *Repository) existsFolded(ctx context.Context, pattern string) (bool, error) {
	var titles []string
	err := r.db.WithContext(ctx).
		Model(&entities.Recommendation{}).
		Pluck("title", &titles).Error
	if err != nil {
		return false, err
	}

	match := likeMatcher(pattern)
	for _, stored := range titles {
		if match.MatchString(strings.ToLower(stored)) {
			return true, nil
		}
	}
	return false, nil
}

// likeMatcher compiles a LIKE pattern into a lowercase regexp where % matches
// any run of characters and _ matches exactly one.
func likeMatcher(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("(?s)^")
	for _, r := range strings.ToLower(pattern) {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

// Insert writes a new recommendation and reports whether a row was created.
func (r *Repository) Insert(ctx context.Context, rec *entities.Recommendation) (bool, error) {
	result := r.db.WithContext(ctx).Create(rec)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
