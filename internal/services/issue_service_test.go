package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"maintenance-app/tracking-service/internal/models"
	"maintenance-app/tracking-service/internal/pipeline"
)

// fakeIssueRepo is an in-memory IssueRepository.
type fakeIssueRepo struct {
	mu     sync.Mutex
	issues map[primitive.ObjectID]*models.Issue

	fetchCalls   int32
	fetchDelay   time.Duration
	orderedFails bool
	updateErr    error
	appendErr    error
}

func newFakeIssueRepo() *fakeIssueRepo {
	return &fakeIssueRepo{issues: map[primitive.ObjectID]*models.Issue{}}
}

func (f *fakeIssueRepo) seed(issue models.Issue) models.Issue {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if issue.Comments == nil {
		issue.Comments = []models.Comment{}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := issue
	f.issues[issue.ID] = &stored
	return issue
}

func (f *fakeIssueRepo) FetchIssues(ctx context.Context, branchID string) ([]models.Issue, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	atomic.AddInt32(&f.fetchCalls, 1)
	if f.fetchDelay > 0 {
		time.Sleep(f.fetchDelay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var result []models.Issue
	for _, issue := range f.issues {
		if issue.BranchID == branchID {
			result = append(result, *issue)
		}
	}
	if result == nil {
		result = []models.Issue{}
	}

	return result, f.orderedFails, nil
}

func (f *fakeIssueRepo) GetIssue(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	issue, ok := f.issues[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *issue
	return &copied, nil
}

func (f *fakeIssueRepo) CreateIssue(ctx context.Context, issue *models.Issue) error {
	issue.ID = primitive.NewObjectID()
	issue.Status = models.StatusNew
	now := time.Now()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	if issue.Comments == nil {
		issue.Comments = []models.Comment{}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *issue
	f.issues[issue.ID] = &stored
	return nil
}

func (f *fakeIssueRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus, updatedAt time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	issue, ok := f.issues[id]
	if !ok {
		return models.ErrNotFound
	}
	issue.Status = status
	issue.UpdatedAt = updatedAt
	return nil
}

func (f *fakeIssueRepo) AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) error {
	if f.appendErr != nil {
		return f.appendErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	issue, ok := f.issues[id]
	if !ok {
		return models.ErrNotFound
	}
	issue.Comments = append(issue.Comments, comment)
	return nil
}

func (f *fakeIssueRepo) DeleteIssue(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.issues[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.issues, id)
	return nil
}

func (f *fakeIssueRepo) DeleteAllIssues(ctx context.Context, branchID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var deleted int64
	for id, issue := range f.issues {
		if issue.BranchID == branchID {
			delete(f.issues, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeIssueRepo) Stats(ctx context.Context, branchID string) (*models.BranchStats, error) {
	return &models.BranchStats{BranchID: branchID}, nil
}

func (f *fakeIssueRepo) commentCount(id primitive.ObjectID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.issues[id].Comments)
}

// fakeUploader is a PhotoUploader that can be told to fail.
type fakeUploader struct {
	url   string
	err   error
	calls int32
}

func (f *fakeUploader) Upload(ctx context.Context, r io.Reader, size int64, contentType, branchID, place string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

// recordingNotifier counts delivered events.
type recordingNotifier struct {
	mu        sync.Mutex
	reported  []models.Issue
	completed []models.Issue
}

func (n *recordingNotifier) IssueReported(ctx context.Context, issue models.Issue) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reported = append(n.reported, issue)
	return nil
}

func (n *recordingNotifier) IssueCompleted(ctx context.Context, issue models.Issue) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, issue)
	return nil
}

func newTestService(repo *fakeIssueRepo, uploader *fakeUploader) *IssueService {
	if uploader == nil {
		uploader = &fakeUploader{url: "http://storage/photo.jpg"}
	}
	return NewIssueService(repo, uploader, nil, zap.NewNop(), 10)
}

func validIssue(branchID string) *models.Issue {
	return &models.Issue{
		BranchID:    branchID,
		RoomNumber:  "101",
		Category:    models.CategoryPlumbing,
		Description: "leaking sink",
		Priority:    models.PriorityLow,
		AuthorName:  "Dana",
		TimePreference: models.TimePreference{
			Type: models.TimeAnytime,
		},
	}
}

func TestCreateIssueForcesStatusNew(t *testing.T) {
	repo := newFakeIssueRepo()
	svc := newTestService(repo, nil)

	issue := validIssue("branch-1")
	issue.Status = models.StatusCompleted

	require.NoError(t, svc.CreateIssue(context.Background(), issue, nil))
	require.Equal(t, models.StatusNew, issue.Status)
	require.False(t, issue.CreatedAt.IsZero())
}

func TestCreateIssueValidation(t *testing.T) {
	repo := newFakeIssueRepo()
	svc := newTestService(repo, nil)

	both := validIssue("branch-1")
	both.Location = "Lobby"
	err := svc.CreateIssue(context.Background(), both, nil)
	require.ErrorIs(t, err, models.ErrValidation)

	neither := validIssue("branch-1")
	neither.RoomNumber = ""
	err = svc.CreateIssue(context.Background(), neither, nil)
	require.ErrorIs(t, err, models.ErrValidation)

	noAuthor := validIssue("branch-1")
	noAuthor.AuthorName = ""
	err = svc.CreateIssue(context.Background(), noAuthor, nil)
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestPhotoFailureDoesNotBlockIssue(t *testing.T) {
	repo := newFakeIssueRepo()
	uploader := &fakeUploader{err: fmt.Errorf("%w: upload timed out", models.ErrTransient)}
	svc := newTestService(repo, uploader)

	issue := validIssue("branch-1")
	photo := &PhotoUpload{Reader: bytesReader(), Size: 3, ContentType: "image/jpeg"}

	require.NoError(t, svc.CreateIssue(context.Background(), issue, photo))

	require.True(t, issue.PhotoUploadFailed)
	require.NotEmpty(t, issue.PhotoErrorMessage)
	require.Empty(t, issue.PhotoURL)

	stored, err := repo.GetIssue(context.Background(), issue.ID)
	require.NoError(t, err)
	require.True(t, stored.PhotoUploadFailed)
}

func TestPhotoSuccessSetsURL(t *testing.T) {
	repo := newFakeIssueRepo()
	uploader := &fakeUploader{url: "http://storage/bucket/photo.jpg"}
	svc := newTestService(repo, uploader)

	issue := validIssue("branch-1")
	photo := &PhotoUpload{Reader: bytesReader(), Size: 3, ContentType: "image/jpeg"}

	require.NoError(t, svc.CreateIssue(context.Background(), issue, photo))
	require.Equal(t, "http://storage/bucket/photo.jpg", issue.PhotoURL)
	require.False(t, issue.PhotoUploadFailed)
}

func TestIndexFallbackIsTransparent(t *testing.T) {
	repo := newFakeIssueRepo()
	repo.orderedFails = true
	repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	repo.seed(*validIssueWithID("branch-1", models.StatusInProgress))
	svc := newTestService(repo, nil)

	result, err := svc.List(context.Background(), "branch-1", pipeline.Filter{}, pipeline.SortDesc, 1)
	require.NoError(t, err)
	require.Len(t, result.Issues, 2)

	// The degradation notice surfaces exactly once.
	require.True(t, result.OrderingDegraded)

	again, err := svc.List(context.Background(), "branch-1", pipeline.Filter{}, pipeline.SortDesc, 1)
	require.NoError(t, err)
	require.False(t, again.OrderingDegraded)
}

func TestConcurrentListsCoalesceFetches(t *testing.T) {
	repo := newFakeIssueRepo()
	repo.fetchDelay = 50 * time.Millisecond
	repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	svc := newTestService(repo, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.List(context.Background(), "branch-1", pipeline.Filter{}, pipeline.SortDesc, 1)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&repo.fetchCalls))
}

func TestTransitionHappyPath(t *testing.T) {
	repo := newFakeIssueRepo()
	seeded := repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	svc := newTestService(repo, nil)
	warmCache(t, svc, "branch-1")

	updated, err := svc.TransitionStatus(context.Background(), seeded.ID, models.StatusInProgress)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, updated.Status)
	require.Equal(t, TransitionCommitted, svc.TransitionStateOf(seeded.ID))

	// Completed -> New reopen is allowed; New -> Completed is not.
	_, err = svc.TransitionStatus(context.Background(), seeded.ID, models.StatusCompleted)
	require.NoError(t, err)
	reopened, err := svc.TransitionStatus(context.Background(), seeded.ID, models.StatusNew)
	require.NoError(t, err)
	require.Equal(t, models.StatusNew, reopened.Status)

	_, err = svc.TransitionStatus(context.Background(), seeded.ID, models.StatusCompleted)
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestTransitionFailureLeavesCacheUntouched(t *testing.T) {
	repo := newFakeIssueRepo()
	seeded := repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	svc := newTestService(repo, nil)
	warmCache(t, svc, "branch-1")

	repo.updateErr = fmt.Errorf("%w: write failed", models.ErrTransient)

	_, err := svc.TransitionStatus(context.Background(), seeded.ID, models.StatusInProgress)
	require.ErrorIs(t, err, models.ErrTransient)
	require.Equal(t, TransitionRolledBack, svc.TransitionStateOf(seeded.ID))

	cached, err := svc.Get(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusNew, cached.Status)

	// A rolled-back transition releases the slot for a retry.
	repo.updateErr = nil
	_, err = svc.TransitionStatus(context.Background(), seeded.ID, models.StatusInProgress)
	require.NoError(t, err)
}

func TestTransitionNotFoundEvictsCache(t *testing.T) {
	repo := newFakeIssueRepo()
	seeded := repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	svc := newTestService(repo, nil)
	warmCache(t, svc, "branch-1")

	repo.updateErr = models.ErrNotFound

	_, err := svc.TransitionStatus(context.Background(), seeded.ID, models.StatusInProgress)
	require.ErrorIs(t, err, models.ErrNotFound)

	result, err := svc.List(context.Background(), "branch-1", pipeline.Filter{}, pipeline.SortDesc, 1)
	require.NoError(t, err)
	require.Empty(t, result.Issues)
}

func TestTransitionRequiresCachedIssue(t *testing.T) {
	repo := newFakeIssueRepo()
	svc := newTestService(repo, nil)

	_, err := svc.TransitionStatus(context.Background(), primitive.NewObjectID(), models.StatusInProgress)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestConcurrentTransitionsOnSameIssueAreSerialized(t *testing.T) {
	repo := newFakeIssueRepo()
	seeded := repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	svc := newTestService(repo, nil)
	warmCache(t, svc, "branch-1")

	// Hold the slot as if a transition were mid-flight.
	require.True(t, svc.beginTransition(seeded.ID, models.StatusInProgress))

	_, err := svc.TransitionStatus(context.Background(), seeded.ID, models.StatusInProgress)
	require.ErrorIs(t, err, models.ErrTransitionInFlight)

	svc.endTransition(seeded.ID, TransitionRolledBack)

	_, err = svc.TransitionStatus(context.Background(), seeded.ID, models.StatusInProgress)
	require.NoError(t, err)
}

func TestTransitionsOnDifferentIssuesProceedConcurrently(t *testing.T) {
	repo := newFakeIssueRepo()
	first := repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	second := repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	svc := newTestService(repo, nil)
	warmCache(t, svc, "branch-1")

	var wg sync.WaitGroup
	for _, id := range []primitive.ObjectID{first.ID, second.ID} {
		wg.Add(1)
		go func(id primitive.ObjectID) {
			defer wg.Done()
			_, err := svc.TransitionStatus(context.Background(), id, models.StatusInProgress)
			require.NoError(t, err)
		}(id)
	}
	wg.Wait()

	require.Equal(t, TransitionCommitted, svc.TransitionStateOf(first.ID))
	require.Equal(t, TransitionCommitted, svc.TransitionStateOf(second.ID))
}

func TestAddCommentValidatesBeforeIO(t *testing.T) {
	repo := newFakeIssueRepo()
	seeded := repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	svc := newTestService(repo, nil)

	_, err := svc.AddComment(context.Background(), seeded.ID, "  ", "Dana")
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.AddComment(context.Background(), seeded.ID, "needs a new washer", "")
	require.ErrorIs(t, err, models.ErrValidation)

	require.Equal(t, 0, repo.commentCount(seeded.ID))
}

func TestAddCommentGeneratesIDAndPersists(t *testing.T) {
	repo := newFakeIssueRepo()
	seeded := repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	svc := newTestService(repo, nil)
	warmCache(t, svc, "branch-1")

	comment, err := svc.AddComment(context.Background(), seeded.ID, "needs a new washer", "Dana")
	require.NoError(t, err)
	require.NotEmpty(t, comment.CommentID)
	require.Equal(t, 1, repo.commentCount(seeded.ID))

	comments, err := svc.Comments(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Equal(t, comment.CommentID, comments[0].CommentID)
}

func TestAddCommentFailureLeavesCacheUntouched(t *testing.T) {
	repo := newFakeIssueRepo()
	seeded := repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	svc := newTestService(repo, nil)
	warmCache(t, svc, "branch-1")

	repo.appendErr = fmt.Errorf("%w: write failed", models.ErrTransient)

	_, err := svc.AddComment(context.Background(), seeded.ID, "lost comment", "Dana")
	require.ErrorIs(t, err, models.ErrTransient)

	comments, err := svc.Comments(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.Empty(t, comments)
}

func TestConcurrentCommentAppendsBothPersist(t *testing.T) {
	repo := newFakeIssueRepo()
	seeded := repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	svc := newTestService(repo, nil)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.AddComment(context.Background(), seeded.ID, fmt.Sprintf("comment %d", i), "Dana")
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 2, repo.commentCount(seeded.ID))
}

func TestCommentsSortedOldestFirst(t *testing.T) {
	repo := newFakeIssueRepo()
	issue := *validIssueWithID("branch-1", models.StatusNew)
	now := time.Now()
	issue.Comments = []models.Comment{
		{CommentID: "c2", Text: "later", Author: "Dana", Timestamp: now.Add(time.Hour)},
		{CommentID: "c1", Text: "earlier", Author: "Dana", Timestamp: now},
	}
	seeded := repo.seed(issue)
	svc := newTestService(repo, nil)

	comments, err := svc.Comments(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.Equal(t, "c1", comments[0].CommentID)
	require.Equal(t, "c2", comments[1].CommentID)
}

func TestDeleteAllIssuesClearsCache(t *testing.T) {
	repo := newFakeIssueRepo()
	repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	repo.seed(*validIssueWithID("branch-2", models.StatusNew))
	svc := newTestService(repo, nil)
	warmCache(t, svc, "branch-1")

	deleted, err := svc.DeleteAllIssues(context.Background(), "branch-1")
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)

	// Deleting a branch with nothing left is still success.
	deleted, err = svc.DeleteAllIssues(context.Background(), "branch-1")
	require.NoError(t, err)
	require.Zero(t, deleted)
}

func TestCriticalIssueTriggersNotification(t *testing.T) {
	repo := newFakeIssueRepo()
	notifier := &recordingNotifier{}
	svc := NewIssueService(repo, &fakeUploader{url: "u"}, notifier, zap.NewNop(), 10)

	issue := validIssue("branch-1")
	issue.Priority = models.PriorityCritical

	require.NoError(t, svc.CreateIssue(context.Background(), issue, nil))

	require.Eventually(t, func() bool {
		notifier.mu.Lock()
		defer notifier.mu.Unlock()
		return len(notifier.reported) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPageFlipReusesFilteredSet(t *testing.T) {
	repo := newFakeIssueRepo()
	for i := 0; i < 15; i++ {
		repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	}
	svc := newTestService(repo, nil)

	first, err := svc.List(context.Background(), "branch-1", pipeline.Filter{}, pipeline.SortDesc, 1)
	require.NoError(t, err)
	require.Len(t, first.Issues, 10)
	require.Equal(t, 2, first.TotalPages)

	second, err := svc.List(context.Background(), "branch-1", pipeline.Filter{}, pipeline.SortDesc, 2)
	require.NoError(t, err)
	require.Len(t, second.Issues, 5)

	// One fetch served both pages.
	require.Equal(t, int32(1), atomic.LoadInt32(&repo.fetchCalls))
}

func TestListSnapshotUnaffectedByLaterWrites(t *testing.T) {
	repo := newFakeIssueRepo()
	seeded := repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	svc := newTestService(repo, nil)
	warmCache(t, svc, "branch-1")

	before, err := svc.List(context.Background(), "branch-1", pipeline.Filter{}, pipeline.SortDesc, 1)
	require.NoError(t, err)
	require.Equal(t, models.StatusNew, before.Issues[0].Status)

	_, err = svc.TransitionStatus(context.Background(), seeded.ID, models.StatusInProgress)
	require.NoError(t, err)

	// The page handed out earlier is a published snapshot, not a view of
	// the live cache.
	require.Equal(t, models.StatusNew, before.Issues[0].Status)

	after, err := svc.List(context.Background(), "branch-1", pipeline.Filter{}, pipeline.SortDesc, 1)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, after.Issues[0].Status)
}

func TestConcurrentListAndTransition(t *testing.T) {
	repo := newFakeIssueRepo()
	var ids []primitive.ObjectID
	for i := 0; i < 20; i++ {
		ids = append(ids, repo.seed(*validIssueWithID("branch-1", models.StatusNew)).ID)
	}
	svc := newTestService(repo, nil)
	warmCache(t, svc, "branch-1")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, id := range ids {
			for _, target := range []models.IssueStatus{models.StatusInProgress, models.StatusCompleted, models.StatusNew} {
				if _, err := svc.TransitionStatus(context.Background(), id, target); err != nil {
					t.Error(err)
					return
				}
			}
		}
	}()

	for i := 0; i < 200; i++ {
		_, err := svc.List(context.Background(), "branch-1", pipeline.Filter{Status: "New"}, pipeline.SortDesc, 1)
		require.NoError(t, err)
		_, err = svc.List(context.Background(), "branch-1", pipeline.Filter{}, pipeline.SortAsc, 1)
		require.NoError(t, err)
	}

	<-done
}

func TestRefreshSurvivesCallerCancellation(t *testing.T) {
	repo := newFakeIssueRepo()
	repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	svc := newTestService(repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	issues, err := svc.Refresh(ctx, "branch-1")
	require.NoError(t, err)
	require.Len(t, issues, 1)
}

func TestQueryMemoIsPerBranch(t *testing.T) {
	repo := newFakeIssueRepo()
	for i := 0; i < 15; i++ {
		repo.seed(*validIssueWithID("branch-1", models.StatusNew))
	}
	repo.seed(*validIssueWithID("branch-2", models.StatusNew))
	svc := newTestService(repo, nil)

	_, err := svc.List(context.Background(), "branch-1", pipeline.Filter{}, pipeline.SortDesc, 1)
	require.NoError(t, err)

	svc.memoMu.Lock()
	first := svc.memo["branch-1"]
	svc.memoMu.Unlock()
	require.NotNil(t, first)

	_, err = svc.List(context.Background(), "branch-2", pipeline.Filter{}, pipeline.SortDesc, 1)
	require.NoError(t, err)

	second, err := svc.List(context.Background(), "branch-1", pipeline.Filter{}, pipeline.SortDesc, 2)
	require.NoError(t, err)
	require.Len(t, second.Issues, 5)

	// Another branch's traffic does not evict this branch's memo.
	svc.memoMu.Lock()
	require.Same(t, first, svc.memo["branch-1"])
	require.NotNil(t, svc.memo["branch-2"])
	svc.memoMu.Unlock()
}

func validIssueWithID(branchID string, status models.IssueStatus) *models.Issue {
	issue := validIssue(branchID)
	issue.ID = primitive.NewObjectID()
	issue.Status = status
	now := time.Now()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	issue.Comments = []models.Comment{}
	return issue
}

func warmCache(t *testing.T, svc *IssueService, branchID string) {
	t.Helper()
	_, err := svc.Refresh(context.Background(), branchID)
	require.NoError(t, err)
}

func bytesReader() io.Reader {
	return &errorFreeReader{}
}

type errorFreeReader struct{ read bool }

func (r *errorFreeReader) Read(p []byte) (int, error) {
	if r.read {
		return 0, io.EOF
	}
	r.read = true
	copy(p, "jpg")
	return 3, nil
}
