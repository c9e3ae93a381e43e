package services

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"punebus-backend/internal/adapters/persistence/models"
	"punebus-backend/internal/adapters/persistence/repositories"
	"punebus-backend/internal/core/domain"
	"punebus-backend/internal/pkg/password"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	password.SetCost(bcrypt.MinCost)
	os.Exit(m.Run())
}

func principal(id string, role domain.Role) *domain.Principal {
	return &domain.Principal{ID: id, Name: string(role), Role: role, IsActive: true}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ------------------------------------------------------------
// users
// ------------------------------------------------------------

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		_ = r.Create(context.Background(), u)
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if r.emailTaken(user) {
		return domain.ConflictError("email already in use")
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

// emailTaken mirrors the unique email index, which soft-deleted rows still occupy
func (r *fakeUserRepo) emailTaken(user *models.User) bool {
	if user.Email == nil {
		return false
	}
	for id, u := range r.users {
		if id != user.ID && u.Email != nil && *u.Email == *user.Email {
			return true
		}
	}
	return false
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email != nil && *u.Email == email && !u.DeletedAt.Valid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(user) {
		return domain.ConflictError("email already in use")
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt.Valid {
		return gorm.ErrRecordNotFound
	}
	u.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, filter repositories.UserFilter) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.User
	for _, u := range r.users {
		if u.DeletedAt.Valid {
			continue
		}
		if filter.Search != "" {
			email := ""
			if u.Email != nil {
				email = *u.Email
			}
			if !containsFold(u.Name, filter.Search) && !containsFold(email, filter.Search) && !containsFold(u.Phone, filter.Search) {
				continue
			}
		}
		if len(filter.Roles) > 0 {
			match := false
			for _, role := range filter.Roles {
				if u.Role == role {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, filter.Offset, filter.Limit), int64(len(out)), nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emailTaken(&models.User{Email: &email}), nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int64{}
	for _, u := range r.users {
		if u.DeletedAt.Valid {
			continue
		}
		out[u.Role]++
	}
	return out, nil
}

// ------------------------------------------------------------
// refresh tokens
// ------------------------------------------------------------

type fakeRefreshTokenRepo struct {
	mu           sync.Mutex
	tokens       []*models.RefreshToken
	purgeCalls   int
	purgeFailure error
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = uint(len(r.tokens) + 1)
	cp := *token
	r.tokens = append(r.tokens, &cp)
	return nil
}

func (r *fakeRefreshTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash && t.RevokedAt == nil {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRefreshTokenRepo) Revoke(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, t := range r.tokens {
		if t.ID == id {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeAllByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeCalls++
	return 0, r.purgeFailure
}

func (r *fakeRefreshTokenRepo) active(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

// ------------------------------------------------------------
// subscriptions
// ------------------------------------------------------------

type fakeSubscriptionRepo struct {
	mu    sync.Mutex
	subs  map[string]*models.Subscription
	clock time.Time
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{
		subs:  map[string]*models.Subscription{},
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, sub *models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	// strictly increasing creation times keep the default sort deterministic
	r.clock = r.clock.Add(time.Second)
	sub.CreatedAt = r.clock
	sub.UpdatedAt = r.clock
	cp := *sub
	r.subs[sub.ID] = &cp
	return nil
}

func (r *fakeSubscriptionRepo) GetByID(_ context.Context, id string) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubscriptionRepo) Update(_ context.Context, sub *models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *sub
	r.subs[sub.ID] = &cp
	return nil
}

func (r *fakeSubscriptionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.subs, id)
	return nil
}

func (r *fakeSubscriptionRepo) List(_ context.Context, filter repositories.SubscriptionFilter) ([]*models.Subscription, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Subscription
	for _, s := range r.subs {
		if filter.Search != "" && !containsFold(s.Name, filter.Search) &&
			!containsFold(s.Phone, filter.Search) && !containsFold(s.Email, filter.Search) {
			continue
		}
		if filter.Plan != "" && s.Plan != filter.Plan {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}

	less := func(a, b *models.Subscription) bool {
		switch filter.SortField {
		case "name":
			return a.Name < b.Name
		case "startDate":
			return a.StartDate.Before(b.StartDate)
		case "endDate":
			return a.EndDate.Before(b.EndDate)
		case "plan":
			return a.Plan < b.Plan
		case "status":
			return a.Status < b.Status
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	asc := strings.EqualFold(filter.SortOrder, "asc")
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})

	return page(out, filter.Offset, filter.Limit), int64(len(out)), nil
}

func (r *fakeSubscriptionRepo) ExpireEndedBefore(_ context.Context, day time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.subs {
		if s.Status == string(domain.StatusActive) && s.EndDate.Before(day) {
			s.Status = string(domain.StatusExpired)
			n++
		}
	}
	return n, nil
}

func (r *fakeSubscriptionRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int64{}
	for _, s := range r.subs {
		out[s.Status]++
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) CountByPlan(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int64{}
	for _, s := range r.subs {
		out[s.Plan]++
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) CountActiveEndingBetween(_ context.Context, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.subs {
		if s.Status == string(domain.StatusActive) && !s.EndDate.Before(from) && !s.EndDate.After(to) {
			n++
		}
	}
	return n, nil
}

// ------------------------------------------------------------
// enquiries
// ------------------------------------------------------------

type fakeEnquiryRepo struct {
	mu        sync.Mutex
	enquiries map[string]*models.Enquiry
}

func newFakeEnquiryRepo() *fakeEnquiryRepo {
	return &fakeEnquiryRepo{enquiries: map[string]*models.Enquiry{}}
}

func (r *fakeEnquiryRepo) Create(_ context.Context, enquiry *models.Enquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if enquiry.ID == "" {
		enquiry.ID = uuid.NewString()
	}
	enquiry.CreatedAt = time.Now()
	cp := *enquiry
	r.enquiries[enquiry.ID] = &cp
	return nil
}

func (r *fakeEnquiryRepo) GetByID(_ context.Context, id string) (*models.Enquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.enquiries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEnquiryRepo) Update(_ context.Context, enquiry *models.Enquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *enquiry
	r.enquiries[enquiry.ID] = &cp
	return nil
}

func (r *fakeEnquiryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.enquiries[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.enquiries, id)
	return nil
}

func (r *fakeEnquiryRepo) List(_ context.Context, filter repositories.EnquiryFilter) ([]*models.Enquiry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Enquiry
	for _, e := range r.enquiries {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !containsFold(e.Name, filter.Search) && !containsFold(e.Phone, filter.Search) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, filter.Offset, filter.Limit), int64(len(out)), nil
}

func (r *fakeEnquiryRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.enquiries {
		if e.Status == status {
			n++
		}
	}
	return n, nil
}
