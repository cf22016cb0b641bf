package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"maintenance-app/tracking-service/internal/models"
	"maintenance-app/tracking-service/internal/pipeline"
)

// IssueRepository is the persistence contract the service depends on.
type IssueRepository interface {
	FetchIssues(ctx context.Context, branchID string) ([]models.Issue, bool, error)
	GetIssue(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	CreateIssue(ctx context.Context, issue *models.Issue) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus, updatedAt time.Time) error
	AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) error
	DeleteIssue(ctx context.Context, id primitive.ObjectID) error
	DeleteAllIssues(ctx context.Context, branchID string) (int64, error)
	Stats(ctx context.Context, branchID string) (*models.BranchStats, error)
}

// PhotoUploader is the object-storage side-channel. An upload failure must
// never block persistence of the record that owns the photo.
type PhotoUploader interface {
	Upload(ctx context.Context, r io.Reader, size int64, contentType, branchID, place string) (string, error)
}

// PhotoUpload carries one pending photo through issue/audit creation.
type PhotoUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// TransitionState tracks one issue's in-flight status change so concurrent
// transitions on the same issue are detected instead of silently racing.
type TransitionState int

const (
	TransitionIdle TransitionState = iota
	TransitionPending
	TransitionCommitted
	TransitionRolledBack
)

type transition struct {
	state  TransitionState
	target models.IssueStatus
}

// ListResult is one page of issues plus a one-shot degradation notice.
type ListResult struct {
	pipeline.Page
	// OrderingDegraded is set on the first page served after the backing
	// store rejected the ordered query; the client shows the notice once.
	OrderingDegraded bool `json:"orderingDegraded,omitempty"`
}

// IssueService owns the per-branch issue cache and every issue operation.
// Nothing here is package-level state; one instance is wired in main.
//
// Cached slices are immutable once published: every mutation replaces the
// map entry with a fresh slice, so readers holding an earlier slice never
// observe a concurrent write.
type IssueService struct {
	repo     IssueRepository
	photos   PhotoUploader
	notifier Notifier
	log      *zap.Logger
	pageSize int

	group singleflight.Group

	mu             sync.Mutex
	cache          map[string][]models.Issue
	generation     map[string]uint64
	degraded       map[string]bool
	degradedNotice map[string]bool

	transMu     sync.Mutex
	transitions map[primitive.ObjectID]*transition

	memoMu sync.Mutex
	memo   map[string]*queryMemo
}

// queryMemo keeps a branch's last filtered+sorted list so that flipping
// pages re-slices instead of re-running the filter.
type queryMemo struct {
	filter     pipeline.Filter
	dir        pipeline.SortDirection
	generation uint64
	result     []models.Issue
}

func NewIssueService(repo IssueRepository, photos PhotoUploader, notifier Notifier, log *zap.Logger, pageSize int) *IssueService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if pageSize < 1 {
		pageSize = 10
	}

	return &IssueService{
		repo:           repo,
		photos:         photos,
		notifier:       notifier,
		log:            log,
		pageSize:       pageSize,
		cache:          map[string][]models.Issue{},
		generation:     map[string]uint64{},
		degraded:       map[string]bool{},
		degradedNotice: map[string]bool{},
		transitions:    map[primitive.ObjectID]*transition{},
		memo:           map[string]*queryMemo{},
	}
}

// List serves one page for a branch. The branch cache is fetched on first
// use; filter+sort results are memoized so page flips only re-slice.
func (s *IssueService) List(ctx context.Context, branchID string, filter pipeline.Filter, dir pipeline.SortDirection, page int) (*ListResult, error) {
	issues, err := s.branchIssues(ctx, branchID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	gen := s.generation[branchID]
	s.mu.Unlock()

	s.memoMu.Lock()
	m := s.memo[branchID]
	if m == nil || m.filter != filter || m.dir != dir || m.generation != gen {
		filtered := pipeline.FilterIssues(issues, filter)
		pipeline.SortIssues(filtered, dir)
		m = &queryMemo{filter: filter, dir: dir, generation: gen, result: filtered}
		s.memo[branchID] = m
	}
	result := m.result
	s.memoMu.Unlock()

	out := &ListResult{Page: pipeline.Paginate(result, page, s.pageSize)}

	s.mu.Lock()
	if s.degraded[branchID] && !s.degradedNotice[branchID] {
		s.degradedNotice[branchID] = true
		out.OrderingDegraded = true
	}
	s.mu.Unlock()

	return out, nil
}

// branchIssues returns the cached list for a branch, fetching it once if
// absent. Concurrent first fetches for the same branch are coalesced into
// a single backend query.
func (s *IssueService) branchIssues(ctx context.Context, branchID string) ([]models.Issue, error) {
	s.mu.Lock()
	cached, ok := s.cache[branchID]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	return s.Refresh(ctx, branchID)
}

// fetchTimeout bounds the shared branch fetch behind the singleflight.
const fetchTimeout = 30 * time.Second

// Refresh re-fetches a branch from the backing store. Overlapping calls for
// the same branch share one in-flight fetch, which runs on a detached
// context so the initiating caller's cancellation cannot fail the
// coalesced ones.
func (s *IssueService) Refresh(ctx context.Context, branchID string) ([]models.Issue, error) {
	v, err, _ := s.group.Do(branchID, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		issues, degraded, err := s.repo.FetchIssues(fetchCtx, branchID)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.cache[branchID] = issues
		s.generation[branchID]++
		if degraded && !s.degraded[branchID] {
			s.log.Warn("server-side ordering degraded, sorting client-side",
				zap.String("branchId", branchID))
		}
		s.degraded[branchID] = degraded
		s.mu.Unlock()

		return issues, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]models.Issue), nil
}

// CreateIssue validates and persists a new issue. Photo upload happens
// first but a failed upload only sets the failure flags; the issue itself
// is always saved. The stored status is New regardless of input.
func (s *IssueService) CreateIssue(ctx context.Context, issue *models.Issue, photo *PhotoUpload) error {
	issue.Status = models.StatusNew

	if err := issue.Validate(); err != nil {
		return err
	}

	if photo != nil {
		url, err := s.photos.Upload(ctx, photo.Reader, photo.Size, photo.ContentType, issue.BranchID, issue.Place())
		if err != nil {
			issue.PhotoUploadFailed = true
			issue.PhotoErrorMessage = err.Error()
			s.log.Warn("photo upload failed, saving issue without photo",
				zap.String("branchId", issue.BranchID),
				zap.Error(err))
		} else {
			issue.PhotoURL = url
		}
	}

	if err := s.repo.CreateIssue(ctx, issue); err != nil {
		return err
	}

	s.mu.Lock()
	if cached, ok := s.cache[issue.BranchID]; ok {
		s.cache[issue.BranchID] = append([]models.Issue{*issue}, cached...)
		s.generation[issue.BranchID]++
	}
	s.mu.Unlock()

	if issue.Priority == models.PriorityCritical {
		s.notifyAsync(func(ctx context.Context) error {
			return s.notifier.IssueReported(ctx, *issue)
		})
	}

	return nil
}

// TransitionStatus moves one issue along the allowed status graph. The
// per-issue transition record serializes concurrent attempts: a second
// transition while one is pending is rejected, transitions on different
// issues proceed independently. The cache is only mutated after the write
// is confirmed.
func (s *IssueService) TransitionStatus(ctx context.Context, id primitive.ObjectID, target models.IssueStatus) (*models.Issue, error) {
	current, ok := s.findCached(id)
	if !ok {
		return nil, fmt.Errorf("%w: issue %s not in local cache", models.ErrNotFound, id.Hex())
	}

	if !current.CanTransition(target) {
		return nil, fmt.Errorf("%w: cannot move from %q to %q", models.ErrValidation, current.Status, target)
	}

	if !s.beginTransition(id, target) {
		return nil, models.ErrTransitionInFlight
	}

	updatedAt := time.Now()
	if err := s.repo.UpdateStatus(ctx, id, target, updatedAt); err != nil {
		s.endTransition(id, TransitionRolledBack)
		if isNotFound(err) {
			s.evict(id)
		}
		return nil, err
	}

	updated := s.commitCached(id, target, updatedAt)
	s.endTransition(id, TransitionCommitted)

	if target == models.StatusCompleted && updated != nil {
		u := *updated
		s.notifyAsync(func(ctx context.Context) error {
			return s.notifier.IssueCompleted(ctx, u)
		})
	}

	return updated, nil
}

// TransitionStateOf exposes the state machine for observability and tests.
func (s *IssueService) TransitionStateOf(id primitive.ObjectID) TransitionState {
	s.transMu.Lock()
	defer s.transMu.Unlock()

	t, ok := s.transitions[id]
	if !ok {
		return TransitionIdle
	}
	return t.state
}

func (s *IssueService) beginTransition(id primitive.ObjectID, target models.IssueStatus) bool {
	s.transMu.Lock()
	defer s.transMu.Unlock()

	if t, ok := s.transitions[id]; ok && t.state == TransitionPending {
		return false
	}
	s.transitions[id] = &transition{state: TransitionPending, target: target}
	return true
}

func (s *IssueService) endTransition(id primitive.ObjectID, state TransitionState) {
	s.transMu.Lock()
	defer s.transMu.Unlock()

	if t, ok := s.transitions[id]; ok {
		t.state = state
	}
}

// AddComment validates, generates the comment id client-side, persists via
// the atomic array append, and only then mirrors the comment into the
// local cache.
func (s *IssueService) AddComment(ctx context.Context, id primitive.ObjectID, text, author string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: comment text is required", models.ErrValidation)
	}
	if strings.TrimSpace(author) == "" {
		return nil, fmt.Errorf("%w: comment author is required", models.ErrValidation)
	}

	comment := models.Comment{
		CommentID: uuid.NewString(),
		Text:      text,
		Author:    author,
		Timestamp: time.Now(),
	}

	if err := s.repo.AppendComment(ctx, id, comment); err != nil {
		if isNotFound(err) {
			s.evict(id)
		}
		return nil, err
	}

	s.mu.Lock()
	for branchID, issues := range s.cache {
		for i := range issues {
			if issues[i].ID == id {
				next := make([]models.Issue, len(issues))
				copy(next, issues)
				next[i].Comments = append(append([]models.Comment{}, next[i].Comments...), comment)
				s.cache[branchID] = next
				s.generation[branchID]++
			}
		}
	}
	s.mu.Unlock()

	return &comment, nil
}

// Comments returns an issue's comments oldest-first, regardless of any
// ambient sort direction used for the issue list.
func (s *IssueService) Comments(ctx context.Context, id primitive.ObjectID) ([]models.Comment, error) {
	var comments []models.Comment

	if issue, ok := s.findCached(id); ok {
		comments = append(comments, issue.Comments...)
	} else {
		issue, err := s.repo.GetIssue(ctx, id)
		if err != nil {
			return nil, err
		}
		comments = append(comments, issue.Comments...)
	}

	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].Timestamp.Before(comments[j].Timestamp)
	})

	if comments == nil {
		comments = []models.Comment{}
	}

	return comments, nil
}

// Get returns one issue, preferring the local cache.
func (s *IssueService) Get(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	if issue, ok := s.findCached(id); ok {
		return &issue, nil
	}

	return s.repo.GetIssue(ctx, id)
}

// FilteredIssues runs the filter+sort pipeline over a branch's full cached
// list without pagination, for exports.
func (s *IssueService) FilteredIssues(ctx context.Context, branchID string, filter pipeline.Filter, dir pipeline.SortDirection) ([]models.Issue, error) {
	issues, err := s.branchIssues(ctx, branchID)
	if err != nil {
		return nil, err
	}

	filtered := pipeline.FilterIssues(issues, filter)
	pipeline.SortIssues(filtered, dir)
	return filtered, nil
}

// DeleteIssue removes one issue and its cache entry.
func (s *IssueService) DeleteIssue(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.DeleteIssue(ctx, id); err != nil {
		if isNotFound(err) {
			s.evict(id)
		}
		return err
	}

	s.evict(id)
	return nil
}

// DeleteAllIssues bulk-deletes a branch's issues. Zero deletions is still
// success.
func (s *IssueService) DeleteAllIssues(ctx context.Context, branchID string) (int64, error) {
	deleted, err := s.repo.DeleteAllIssues(ctx, branchID)
	if err != nil {
		return deleted, err
	}

	s.mu.Lock()
	delete(s.cache, branchID)
	s.generation[branchID]++
	s.mu.Unlock()

	return deleted, nil
}

// Stats proxies the dashboard counters.
func (s *IssueService) Stats(ctx context.Context, branchID string) (*models.BranchStats, error) {
	return s.repo.Stats(ctx, branchID)
}

func (s *IssueService) findCached(id primitive.ObjectID) (models.Issue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, issues := range s.cache {
		for i := range issues {
			if issues[i].ID == id {
				return issues[i], true
			}
		}
	}
	return models.Issue{}, false
}

func (s *IssueService) commitCached(id primitive.ObjectID, status models.IssueStatus, updatedAt time.Time) *models.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()

	for branchID, issues := range s.cache {
		for i := range issues {
			if issues[i].ID == id {
				next := make([]models.Issue, len(issues))
				copy(next, issues)
				next[i].Status = status
				next[i].UpdatedAt = updatedAt
				s.cache[branchID] = next
				s.generation[branchID]++
				updated := next[i]
				return &updated
			}
		}
	}
	return nil
}

func (s *IssueService) evict(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for branchID, issues := range s.cache {
		for i := range issues {
			if issues[i].ID == id {
				next := make([]models.Issue, 0, len(issues)-1)
				next = append(next, issues[:i]...)
				next = append(next, issues[i+1:]...)
				s.cache[branchID] = next
				s.generation[branchID]++
				return
			}
		}
	}
}

// notifyAsync fires a webhook without blocking the caller. Failures are
// logged, never surfaced.
func (s *IssueService) notifyAsync(fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := fn(ctx); err != nil {
			s.log.Warn("webhook notification failed", zap.Error(err))
		}
	}()
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
