package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"campusevents/internal/domain"
)

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	nextID    int
	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) addUser(u *domain.User) *domain.User {
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", f.nextID)
		f.nextID++
	}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Email, user.Email) {
			return domain.ErrDuplicateEmail
		}
	}
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		// Copy so callers see the state as of the read, like the real repo.
		copied := *u
		return &copied, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, userID string, profile domain.Profile) error {
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Profile = profile
	return nil
}

func (f *fakeUserRepo) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Profile.Avatar = avatarURL
	return nil
}

func (f *fakeUserRepo) UpdateNotificationPreferences(ctx context.Context, userID string, prefs domain.NotificationPreferences) error {
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Notifications = prefs
	return nil
}

func (f *fakeUserRepo) ListAll(ctx context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) GetStats(ctx context.Context, userID string) (domain.Stats, error) {
	u, ok := f.byID[userID]
	if !ok {
		return domain.Stats{}, domain.ErrUserNotFound
	}
	return u.Stats, nil
}

func (f *fakeUserRepo) UpdateStats(ctx context.Context, userID string, stats domain.Stats) error {
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Stats = stats
	return nil
}

func (f *fakeUserRepo) ListBadges(ctx context.Context, userID string) ([]domain.Badge, error) {
	u, ok := f.byID[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Badges, nil
}

func (f *fakeUserRepo) AwardBadge(ctx context.Context, userID string, badge domain.Badge) (bool, error) {
	u, ok := f.byID[userID]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	for _, held := range u.Badges {
		if held.Name == badge.Name {
			return false, nil
		}
	}
	u.Badges = append(u.Badges, badge)
	return true, nil
}

// fakeEventRepo is an in-memory EventRepository for tests. Attendee and view
// counts are derived from the sets, like the real repository.
type fakeEventRepo struct {
	byID      map[string]*domain.Event
	attendees map[string][]string        // eventID -> userIDs in registration order
	views     map[string]map[string]bool // eventID -> userID set
	roster    map[string]*domain.AttendeeRecord
	nextID    int
	createErr error
	listErr   error
	addErr    error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:      make(map[string]*domain.Event),
		attendees: make(map[string][]string),
		views:     make(map[string]map[string]bool),
		roster:    make(map[string]*domain.AttendeeRecord),
		nextID:    1,
	}
}

func (f *fakeEventRepo) withCounts(e *domain.Event) *domain.Event {
	out := *e
	out.AttendeeCount = len(f.attendees[e.ID])
	out.ViewCount = len(f.views[e.ID])
	return &out
}

func (f *fakeEventRepo) Create(ctx context.Context, event *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	event.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	stored := *event
	f.byID[event.ID] = &stored
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return f.withCounts(e), nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Event
	for _, e := range f.byID {
		if filter.Status != "" && string(e.Status) != filter.Status {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.CreatedBy != "" && e.CreatedBy != filter.CreatedBy {
			continue
		}
		if filter.FeaturedOnly && !e.Featured {
			continue
		}
		if !filter.CreatedAfter.IsZero() && e.CreatedAt.Before(filter.CreatedAfter) {
			continue
		}
		out = append(out, f.withCounts(e))
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, event *domain.Event) error {
	if _, ok := f.byID[event.ID]; !ok {
		return domain.ErrNotFound
	}
	stored := *event
	f.byID[event.ID] = &stored
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	delete(f.attendees, id)
	delete(f.views, id)
	return nil
}

func (f *fakeEventRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.CreatedBy == ownerID {
			out = append(out, f.withCounts(e))
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListByAttendee(ctx context.Context, userID string, publishedOnly bool) ([]*domain.Event, error) {
	var out []*domain.Event
	for id, users := range f.attendees {
		for _, uid := range users {
			if uid != userID {
				continue
			}
			e := f.byID[id]
			if publishedOnly && e.Status != domain.StatusPublished {
				continue
			}
			out = append(out, f.withCounts(e))
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.Status != domain.StatusPublished {
			continue
		}
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		out = append(out, f.withCounts(e))
	}
	return out, nil
}

func (f *fakeEventRepo) AddAttendee(ctx context.Context, eventID, userID string) error {
	if f.addErr != nil {
		return f.addErr
	}
	e, ok := f.byID[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	// Like the real repo: the capacity guard runs before the unique
	// constraint would fire.
	if e.Capacity != nil && len(f.attendees[eventID]) >= *e.Capacity {
		return domain.ErrEventFull
	}
	for _, uid := range f.attendees[eventID] {
		if uid == userID {
			return domain.ErrAlreadyRegistered
		}
	}
	f.attendees[eventID] = append(f.attendees[eventID], userID)
	return nil
}

func (f *fakeEventRepo) RemoveAttendee(ctx context.Context, eventID, userID string) error {
	users := f.attendees[eventID]
	for i, uid := range users {
		if uid == userID {
			f.attendees[eventID] = append(users[:i], users[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeEventRepo) IsAttendee(ctx context.Context, eventID, userID string) (bool, error) {
	for _, uid := range f.attendees[eventID] {
		if uid == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEventRepo) CountAttendees(ctx context.Context, eventID string) (int, error) {
	return len(f.attendees[eventID]), nil
}

func (f *fakeEventRepo) ListAttendees(ctx context.Context, eventID string) ([]*domain.AttendeeRecord, error) {
	out := []*domain.AttendeeRecord{}
	for _, uid := range f.attendees[eventID] {
		if rec, ok := f.roster[uid]; ok {
			out = append(out, rec)
			continue
		}
		out = append(out, &domain.AttendeeRecord{ID: uid})
	}
	return out, nil
}

func (f *fakeEventRepo) AddView(ctx context.Context, eventID, userID string) error {
	if _, ok := f.byID[eventID]; !ok {
		return domain.ErrNotFound
	}
	if f.views[eventID] == nil {
		f.views[eventID] = make(map[string]bool)
	}
	f.views[eventID][userID] = true
	return nil
}

// fakeCommentRepo is an in-memory CommentRepository for tests. eventOwners
// backs ListReported's ownership scoping.
type fakeCommentRepo struct {
	byID        map[string]*domain.Comment
	order       []string
	likes       map[string]map[string]bool
	reports     map[string]map[string]bool
	eventOwners map[string]string
	nextID      int
	createErr   error
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{
		byID:        make(map[string]*domain.Comment),
		likes:       make(map[string]map[string]bool),
		reports:     make(map[string]map[string]bool),
		eventOwners: make(map[string]string),
		nextID:      1,
	}
}

func (f *fakeCommentRepo) withCounts(c *domain.Comment) *domain.Comment {
	out := *c
	out.LikeCount = len(f.likes[c.ID])
	out.IsReported = len(f.reports[c.ID]) > 0
	return &out
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	if f.createErr != nil {
		return f.createErr
	}
	comment.ID = fmt.Sprintf("c-%d", f.nextID)
	f.nextID++
	stored := *comment
	f.byID[comment.ID] = &stored
	f.order = append(f.order, comment.ID)
	return nil
}

func (f *fakeCommentRepo) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	if c, ok := f.byID[id]; ok {
		return f.withCounts(c), nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCommentRepo) ListTopLevel(ctx context.Context, eventID string, sort domain.CommentSort) ([]*domain.Comment, error) {
	var out []*domain.Comment
	for i := len(f.order) - 1; i >= 0; i-- {
		c := f.byID[f.order[i]]
		if c.EventID != eventID || c.ParentID != nil || c.IsDeleted {
			continue
		}
		out = append(out, f.withCounts(c))
	}
	if sort == domain.SortOldest {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) ListReplies(ctx context.Context, parentID string) ([]*domain.Comment, error) {
	out := []*domain.Comment{}
	for _, id := range f.order {
		c := f.byID[id]
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, f.withCounts(c))
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) UpdateContent(ctx context.Context, id, content string) error {
	c, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Content = content
	c.UpdatedAt = time.Now()
	return nil
}

func (f *fakeCommentRepo) SoftDelete(ctx context.Context, id string) error {
	c, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.IsDeleted = true
	return nil
}

func (f *fakeCommentRepo) SoftDeleteReplies(ctx context.Context, parentID string) error {
	for _, c := range f.byID {
		if c.ParentID != nil && *c.ParentID == parentID {
			c.IsDeleted = true
		}
	}
	return nil
}

func (f *fakeCommentRepo) HasLiked(ctx context.Context, commentID, userID string) (bool, error) {
	return f.likes[commentID][userID], nil
}

func (f *fakeCommentRepo) AddLike(ctx context.Context, commentID, userID string) error {
	if f.likes[commentID] == nil {
		f.likes[commentID] = make(map[string]bool)
	}
	f.likes[commentID][userID] = true
	return nil
}

func (f *fakeCommentRepo) RemoveLike(ctx context.Context, commentID, userID string) error {
	delete(f.likes[commentID], userID)
	return nil
}

func (f *fakeCommentRepo) CountLikes(ctx context.Context, commentID string) (int, error) {
	return len(f.likes[commentID]), nil
}

func (f *fakeCommentRepo) AddReport(ctx context.Context, commentID, userID string) (bool, error) {
	if f.reports[commentID][userID] {
		return false, nil
	}
	if f.reports[commentID] == nil {
		f.reports[commentID] = make(map[string]bool)
	}
	f.reports[commentID][userID] = true
	return true, nil
}

func (f *fakeCommentRepo) SetPinned(ctx context.Context, id string, pinned bool) error {
	c, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.IsPinned = pinned
	return nil
}

func (f *fakeCommentRepo) ListReported(ctx context.Context, ownerID string) ([]*domain.Comment, error) {
	out := []*domain.Comment{}
	for _, id := range f.order {
		c := f.byID[id]
		if len(f.reports[id]) == 0 || c.IsDeleted {
			continue
		}
		if ownerID != "" && f.eventOwners[c.EventID] != ownerID {
			continue
		}
		out = append(out, f.withCounts(c))
	}
	return out, nil
}

// statCall records one IncrementStat invocation on the fake badge engine.
type statCall struct {
	userID string
	stat   domain.StatName
	amount int
}

// fakeBadgeEngine records stat and evaluation calls; award and incErr control
// the returned badges and error.
type fakeBadgeEngine struct {
	mu        sync.Mutex
	stats     map[string]domain.Stats
	incCalls  []statCall
	evalCalls []string
	award     []domain.Badge
	incErr    error
}

func newFakeBadgeEngine() *fakeBadgeEngine {
	return &fakeBadgeEngine{stats: make(map[string]domain.Stats)}
}

func (f *fakeBadgeEngine) IncrementStat(ctx context.Context, userID string, stat domain.StatName, amount int, bctx *domain.BadgeContext) (domain.Stats, []domain.Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incErr != nil {
		return domain.Stats{}, nil, f.incErr
	}
	s := f.stats[userID]
	switch stat {
	case domain.StatEventsAttended:
		s.EventsAttended += amount
	case domain.StatEventsOrganized:
		s.EventsOrganized += amount
	case domain.StatCommentsPosted:
		s.CommentsPosted += amount
	}
	f.stats[userID] = s
	f.incCalls = append(f.incCalls, statCall{userID: userID, stat: stat, amount: amount})
	return s, f.award, nil
}

func (f *fakeBadgeEngine) EvaluateBadges(ctx context.Context, userID string, bctx *domain.BadgeContext) ([]domain.Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evalCalls = append(f.evalCalls, userID)
	return f.award, nil
}

func (f *fakeBadgeEngine) Catalog() []domain.BadgeInfo { return nil }

func (f *fakeBadgeEngine) statCalls() []statCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]statCall(nil), f.incCalls...)
}

func (f *fakeBadgeEngine) evaluated() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.evalCalls...)
}

// fakeEmailSender records sent emails per category. Services send some emails
// from goroutines, so access is guarded.
type fakeEmailSender struct {
	mu            sync.Mutex
	welcomes      []string
	confirmations []string
	regNotices    []string
	updates       []string
	reminders     []string
	commentNotes  []string
	reminderErr   map[string]error // recipient email -> error
}

func newFakeEmailSender() *fakeEmailSender {
	return &fakeEmailSender{reminderErr: make(map[string]error)}
}

func (f *fakeEmailSender) SendWelcome(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomes = append(f.welcomes, user.Email)
	return nil
}

func (f *fakeEmailSender) SendRegistrationConfirmation(ctx context.Context, user *domain.User, event *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations = append(f.confirmations, user.Email)
	return nil
}

func (f *fakeEmailSender) SendNewRegistrationNotification(ctx context.Context, organizer *domain.User, event *domain.Event, student *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regNotices = append(f.regNotices, organizer.Email)
	return nil
}

func (f *fakeEmailSender) SendEventUpdate(ctx context.Context, user *domain.User, event *domain.Event, changes []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, user.Email)
	return nil
}

func (f *fakeEmailSender) SendEventReminder(ctx context.Context, user *domain.User, event *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.reminderErr[user.Email]; err != nil {
		return err
	}
	f.reminders = append(f.reminders, user.Email)
	return nil
}

func (f *fakeEmailSender) SendNewCommentNotification(ctx context.Context, organizer *domain.User, event *domain.Event, comment *domain.Comment, commenter *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commentNotes = append(f.commentNotes, organizer.Email)
	return nil
}

func (f *fakeEmailSender) sentReminders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.reminders...)
}

// fakeMediaStore records uploads and deletions.
type fakeMediaStore struct {
	uploads   []string // folder/filename
	deleted   []string
	uploadErr error
}

func (f *fakeMediaStore) Upload(ctx context.Context, folder string, upload *domain.Upload) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads = append(f.uploads, folder+"/"+upload.Filename)
	return "https://media.test/" + folder + "/" + upload.Filename, nil
}

func (f *fakeMediaStore) Delete(ctx context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

// fakeHasher is a deterministic PasswordHasher.
type fakeHasher struct {
	saltErr error
}

func (f *fakeHasher) GenerateSalt() (string, error) {
	if f.saltErr != nil {
		return "", f.saltErr
	}
	return "salt", nil
}

func (f *fakeHasher) Hash(salt, password string) (string, error) {
	return salt + ":" + password, nil
}

func (f *fakeHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return fmt.Errorf("hash mismatch")
	}
	return nil
}

// fakeTokenIssuer issues predictable tokens.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(userID, email string, role domain.Role, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + userID, nil
}
