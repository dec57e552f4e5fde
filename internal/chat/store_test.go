// ABOUTME: Tests for the in-memory conversation store
// ABOUTME: Covers ordering, titles, append rules, deletion and the sample overlay

package chat

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/coven-chat/internal/ident"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	base := []Option{WithClock(clock.Now), WithIDs(ident.Sequence("id"))}
	return NewStore(append(base, opts...)...), clock
}

// =============================================================================
// Conversations
// =============================================================================

func TestStore_CreateConversation(t *testing.T) {
	s, clock := newTestStore(t)

	id1 := s.CreateConversation()
	clock.Advance(time.Second)
	id2 := s.CreateConversation()

	convs := s.VisibleConversations()
	require.Len(t, convs, 2)
	assert.Equal(t, id2, convs[0].ID, "newest first")
	assert.Equal(t, id1, convs[1].ID)
	assert.Equal(t, PlaceholderTitle, convs[0].Title)
	assert.Empty(t, convs[0].Messages)
	assert.Equal(t, clock.Now(), convs[0].CreatedAt)
	assert.Equal(t, id2, s.ActiveID())
}

func TestStore_SelectConversation(t *testing.T) {
	s, _ := newTestStore(t)
	id1 := s.CreateConversation()
	s.CreateConversation()

	assert.True(t, s.SelectConversation(id1))
	assert.Equal(t, id1, s.ActiveID())

	assert.False(t, s.SelectConversation("missing"))
	assert.Equal(t, id1, s.ActiveID(), "unknown id is a no-op")
}

func TestStore_DeleteActiveClearsActive(t *testing.T) {
	s, _ := newTestStore(t)
	id1 := s.CreateConversation()
	id2 := s.CreateConversation()

	require.True(t, s.DeleteConversation(id2))
	assert.Empty(t, s.ActiveID(), "no auto-select after deleting active")
	require.Len(t, s.VisibleConversations(), 1)
	assert.Equal(t, id1, s.VisibleConversations()[0].ID)
}

func TestStore_DeleteNonActiveKeepsActive(t *testing.T) {
	s, _ := newTestStore(t)
	id1 := s.CreateConversation()
	id2 := s.CreateConversation()

	require.True(t, s.DeleteConversation(id1))
	assert.Equal(t, id2, s.ActiveID())
	assert.False(t, s.DeleteConversation(id1), "second delete is a no-op")
}

// =============================================================================
// Messages and titles
// =============================================================================

func TestStore_AppendSetsTitleFromFirstUserMessage(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.CreateConversation()

	_, ok := s.AppendMessage(id, Message{Role: RoleUser, Content: "Tell me a joke"})
	require.True(t, ok)
	_, ok = s.AppendMessage(id, Message{Role: RoleUser, Content: "Another one please"})
	require.True(t, ok)

	conv, ok := s.Conversation(id)
	require.True(t, ok)
	assert.Equal(t, "Tell me a joke", conv.Title)
	require.Len(t, conv.Messages, 2)
}

func TestStore_FirstNonUserMessageDoesNotSetTitle(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.CreateConversation()

	s.AppendMessage(id, Message{Role: RoleAssistant, Content: "hello"})
	s.AppendMessage(id, Message{Role: RoleUser, Content: "hi"})

	conv, _ := s.Conversation(id)
	assert.Equal(t, PlaceholderTitle, conv.Title, "title only comes from the first-ever message")
}

func TestStore_AppendToUnknownConversation(t *testing.T) {
	s, _ := newTestStore(t)
	_, ok := s.AppendMessage("nope", Message{Role: RoleUser, Content: "x"})
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

func TestStore_AppendFillsAndProtectsIdentity(t *testing.T) {
	s, clock := newTestStore(t)
	id := s.CreateConversation()

	first, _ := s.AppendMessage(id, Message{Role: RoleUser, Content: "a"})
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, clock.Now(), first.Timestamp)

	dup, _ := s.AppendMessage(id, Message{ID: first.ID, Role: RoleUser, Content: "b"})
	assert.NotEqual(t, first.ID, dup.ID, "duplicate ids are replaced")

	older, _ := s.AppendMessage(id, Message{Role: RoleUser, Content: "c", Timestamp: clock.Now().Add(-time.Hour)})
	assert.Equal(t, dup.Timestamp, older.Timestamp, "timestamps never decrease")

	plain, _ := s.AppendMessage(id, Message{Role: RoleAssistant, Content: "d", RetrySource: "x"})
	assert.Empty(t, plain.RetrySource, "only error messages carry a retry source")
	assert.False(t, plain.Retryable())

	failed, _ := s.AppendMessage(id, Message{Role: RoleError, Content: "e", RetrySource: "a"})
	assert.True(t, failed.Retryable())
}

func TestStore_ReadsReturnCopies(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.CreateConversation()
	s.AppendMessage(id, Message{Role: RoleUser, Content: "original"})

	conv, _ := s.Conversation(id)
	conv.Messages[0].Content = "tampered"
	conv.Title = "tampered"

	again, _ := s.Conversation(id)
	assert.Equal(t, "original", again.Messages[0].Content)
	assert.Equal(t, "original", again.Title)
}

func TestStore_FindMessage(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.CreateConversation()
	msg, _ := s.AppendMessage(id, Message{Role: RoleError, Content: "fail", RetrySource: "hi"})

	convID, found, ok := s.FindMessage(msg.ID)
	require.True(t, ok)
	assert.Equal(t, id, convID)
	assert.Equal(t, "hi", found.RetrySource)

	_, _, ok = s.FindMessage("missing")
	assert.False(t, ok)
}

func TestTruncateTitle(t *testing.T) {
	exact := strings.Repeat("a", TitleMaxRunes)
	assert.Equal(t, exact, TruncateTitle(exact))
	assert.Equal(t, "short", TruncateTitle("short"))

	long := strings.Repeat("b", TitleMaxRunes+5)
	got := TruncateTitle(long)
	assert.True(t, strings.HasSuffix(got, TitleEllipsis))
	assert.Equal(t, TitleMaxRunes+len(TitleEllipsis), len([]rune(got)))

	wide := strings.Repeat("語", TitleMaxRunes+1)
	assert.Equal(t, strings.Repeat("語", TitleMaxRunes)+TitleEllipsis, TruncateTitle(wide))
}

// =============================================================================
// Sample overlay
// =============================================================================

func TestStore_SampleViewWhenEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	s.EnableSampleView()
	assert.True(t, s.ShowingSample())

	convs := s.VisibleConversations()
	require.Len(t, convs, 3)
	assert.Equal(t, "sample-1", convs[0].ID)
	assert.Equal(t, "sample-1", s.ActiveID())

	active, ok := s.ActiveConversation()
	require.True(t, ok)
	assert.Equal(t, "What can you help me with?", active.Title)

	assert.True(t, s.SelectConversation("sample-3"))
	assert.Equal(t, "sample-3", s.ActiveID())
}

func TestStore_SampleViewDoesNotHideLiveConversations(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.CreateConversation()

	s.EnableSampleView()
	assert.True(t, s.SampleViewEnabled())
	assert.False(t, s.ShowingSample())

	convs := s.VisibleConversations()
	require.Len(t, convs, 1)
	assert.Equal(t, id, convs[0].ID)
	assert.Equal(t, id, s.ActiveID())
}

func TestStore_SampleDatasetIsReadOnly(t *testing.T) {
	s, _ := newTestStore(t, WithSampleView(true))
	require.True(t, s.ShowingSample())

	assert.False(t, s.DeleteConversation("sample-1"))
	_, ok := s.AppendMessage("sample-1", Message{Role: RoleUser, Content: "x"})
	assert.False(t, ok)

	conv, _ := s.Conversation("sample-1")
	conv.Messages[0].Content = "tampered"
	again, _ := s.Conversation("sample-1")
	assert.Equal(t, "What can you help me with?", again.Messages[0].Content)
}

func TestStore_CreateWhileShowingSampleClearsOverlay(t *testing.T) {
	s, _ := newTestStore(t, WithSampleView(true))

	id := s.CreateConversation()
	assert.False(t, s.SampleViewEnabled())
	assert.False(t, s.ShowingSample())
	assert.Equal(t, id, s.ActiveID())

	require.True(t, s.DeleteConversation(id))
	assert.False(t, s.ShowingSample(), "overlay does not come back after the last delete")
	assert.Empty(t, s.VisibleConversations())
}

func TestStore_DisableSampleView(t *testing.T) {
	s, _ := newTestStore(t, WithSampleView(true))
	s.DisableSampleView()
	assert.Empty(t, s.ActiveID())
	assert.Empty(t, s.VisibleConversations())

	id1 := s.CreateConversation()
	s.CreateConversation()
	s.SelectConversation(id1)
	s.EnableSampleView()
	s.DisableSampleView()
	assert.NotEqual(t, id1, s.ActiveID(), "newest live conversation becomes active")
	assert.Equal(t, s.VisibleConversations()[0].ID, s.ActiveID())
}

// =============================================================================
// Send targets
// =============================================================================

func TestStore_EnsureLiveTarget(t *testing.T) {
	s, _ := newTestStore(t)

	created := s.EnsureLiveTarget("")
	assert.Equal(t, created, s.ActiveID(), "no active conversation: create one")

	other := s.CreateConversation()
	assert.Equal(t, other, s.EnsureLiveTarget(""), "active conversation")
	assert.Equal(t, created, s.EnsureLiveTarget(created), "explicit conversation")
	assert.Equal(t, other, s.EnsureLiveTarget("unknown"), "unknown explicit id falls back to active")
	assert.Equal(t, other, s.ActiveID(), "explicit target does not change the active conversation")
	assert.Equal(t, 2, s.Len())
}

func TestStore_EnsureLiveTargetMaterialisesFromSample(t *testing.T) {
	s, _ := newTestStore(t, WithSampleView(true))

	target := s.EnsureLiveTarget("sample-1")
	assert.NotEqual(t, "sample-1", target)
	assert.Equal(t, 1, s.Len())
	assert.False(t, s.SampleViewEnabled())
	assert.Equal(t, target, s.ActiveID())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()
	id := s.CreateConversation()

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			for range 20 {
				s.AppendMessage(id, Message{Role: RoleUser, Content: "x"})
				s.VisibleConversations()
			}
		})
	}
	wg.Wait()

	conv, _ := s.Conversation(id)
	assert.Len(t, conv.Messages, 200)
}
