package store

import (
	"cmp"
	"fmt"
	"opsched/cmd/internal/domain/entity"
	"opsched/cmd/internal/scheduling"
	"slices"
	"sync"
)

type LinkPersistence interface {
	Save(link *entity.SchedulingLink) error
	Delete(id string) error
	FindAll() ([]*entity.SchedulingLink, error)
}

// LinkStore holds scheduling links, indexed by id and slug.
type LinkStore struct {
	mu      sync.RWMutex
	links   map[string]*entity.SchedulingLink
	bySlug  map[string]string
	persist LinkPersistence
	baseURL string
	opts    options
}

func NewLinkStore(persist LinkPersistence, baseURL string, opts ...Option) *LinkStore {
	return &LinkStore{
		links:   make(map[string]*entity.SchedulingLink),
		bySlug:  make(map[string]string),
		persist: persist,
		baseURL: baseURL,
		opts:    buildOptions(opts),
	}
}

func (s *LinkStore) Load() error {
	if s.persist == nil {
		return nil
	}
	all, err := s.persist.FindAll()
	if err != nil {
		return fmt.Errorf("load links: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.links = make(map[string]*entity.SchedulingLink, len(all))
	s.bySlug = make(map[string]string, len(all))
	for _, l := range all {
		s.links[l.ID] = l
		s.bySlug[l.Slug] = l.ID
	}
	return nil
}

// Create validates the draft and assigns id, slug, url and timestamps.
// A slug already in use gets a short id suffix, then a counter.
func (s *LinkStore) Create(draft scheduling.LinkDraft) (entity.SchedulingLink, error) {
	l, err := scheduling.NewSchedulingLink(draft)
	if err != nil {
		return entity.SchedulingLink{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l.ID = s.opts.newID()
	l.Slug = s.freeSlug(scheduling.Slugify(l.Name), l.ID)
	l.URL = scheduling.LinkURL(s.baseURL, l.Slug)
	l.CreatedAt = s.opts.stamp(0)
	l.UpdatedAt = l.CreatedAt

	if err := s.save(&l); err != nil {
		return entity.SchedulingLink{}, err
	}
	s.links[l.ID] = &l
	s.bySlug[l.Slug] = l.ID
	return l.Clone(), nil
}

func (s *LinkStore) Get(id string) (entity.SchedulingLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.links[id]
	if !ok {
		return entity.SchedulingLink{}, ErrNotFound
	}
	return l.Clone(), nil
}

func (s *LinkStore) GetBySlug(slug string) (entity.SchedulingLink, error) {
	s.mu.RLock()
	id, ok := s.bySlug[slug]
	s.mu.RUnlock()
	if !ok {
		return entity.SchedulingLink{}, ErrNotFound
	}
	return s.Get(id)
}

// List returns every link in creation order.
func (s *LinkStore) List() []entity.SchedulingLink {
	s.mu.RLock()
	out := make([]entity.SchedulingLink, 0, len(s.links))
	for _, l := range s.links {
		out = append(out, l.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b entity.SchedulingLink) int {
		return cmp.Or(cmp.Compare(a.CreatedAt, b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out
}

func (s *LinkStore) SetActive(id string, active bool) (entity.SchedulingLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.links[id]
	if !ok {
		return entity.SchedulingLink{}, ErrNotFound
	}
	next := cur.Clone()
	next.IsActive = active
	next.UpdatedAt = s.opts.stamp(cur.UpdatedAt)
	if err := s.save(&next); err != nil {
		return entity.SchedulingLink{}, err
	}
	s.links[id] = &next
	return next.Clone(), nil
}

func (s *LinkStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.links[id]
	if !ok {
		return ErrNotFound
	}
	if s.persist != nil {
		if err := s.persist.Delete(id); err != nil {
			return fmt.Errorf("delete link %s: %w", id, err)
		}
	}
	delete(s.bySlug, cur.Slug)
	delete(s.links, id)
	return nil
}

// freeSlug must be called with mu held.
func (s *LinkStore) freeSlug(base, id string) string {
	if _, taken := s.bySlug[base]; !taken {
		return base
	}
	if len(id) > 8 {
		id = id[:8]
	}
	slug := base + "-" + id
	for n := 2; ; n++ {
		if _, taken := s.bySlug[slug]; !taken {
			return slug
		}
		slug = fmt.Sprintf("%s-%s-%d", base, id, n)
	}
}

func (s *LinkStore) save(l *entity.SchedulingLink) error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist.Save(l); err != nil {
		return fmt.Errorf("save link %s: %w", l.ID, err)
	}
	return nil
}
