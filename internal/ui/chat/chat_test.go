// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aptui/internal/archipelago"
	"github.com/jeranaias/aptui/internal/model"
	"github.com/jeranaias/aptui/internal/session"
	"github.com/jeranaias/aptui/internal/ui/styles"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type fakeSayer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSayer) Say(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return f.err
}

func newTestModel(t *testing.T) (Model, *session.Session) {
	t.Helper()
	sess := session.New()
	m := New(styles.NewTheme(), sess)
	m.SetSize(100, 30)
	return m, sess
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

// =============================================================================
// RENDERING TESTS
// =============================================================================

func TestView_ShowsDecodedLog(t *testing.T) {
	m, sess := newTestModel(t)
	sess.Notice("#EE00EEAlice joined")
	m.Refresh()

	view := m.View()
	assert.Contains(t, view, "Alice joined")
	assert.NotContains(t, view, "#EE00EE")
}

func TestView_EmptyBeforeSize(t *testing.T) {
	m := New(styles.NewTheme(), session.New())
	assert.Empty(t, m.View())
}

func TestRefresh_Incremental(t *testing.T) {
	m, sess := newTestModel(t)
	sess.Notice("first")
	m.Refresh()
	require.Len(t, m.rendered, 1)

	sess.Notice("second")
	sess.Notice("third")
	m.Refresh()
	require.Len(t, m.rendered, 3)
	assert.Contains(t, m.rendered[2], "third")
}

func TestRefresh_RebuildsAfterReset(t *testing.T) {
	m, sess := newTestModel(t)
	sess.Notice("old")
	m.Refresh()

	sess.Reset()
	sess.Notice("new")
	m.Refresh()

	require.Len(t, m.rendered, 1)
	assert.Contains(t, m.rendered[0], "new")
}

func TestRefresh_DisconnectNoticeReplacesPreviousSession(t *testing.T) {
	m, sess := newTestModel(t)
	sess.Notice("old message from previous session")
	m.Refresh()

	sess.Reset()
	sess.Notice("Disconnected from Archipelago")
	m.Refresh()

	view := m.View()
	assert.Contains(t, view, "Disconnected from Archipelago")
	assert.NotContains(t, view, "old message from previous session")
}

func TestRefresh_RefilledLogStaysInOrder(t *testing.T) {
	m, sess := newTestModel(t)
	sess.Notice("a1")
	sess.Notice("a2")
	m.Refresh()

	sess.Reset()
	sess.Notice("b1")
	sess.Notice("b2")
	sess.Notice("b3")
	m.Refresh()

	require.Len(t, m.rendered, 3)
	for i, want := range []string{"b1", "b2", "b3"} {
		assert.Contains(t, m.rendered[i], want)
	}
}

func TestRefresh_ClearedLogEmptiesView(t *testing.T) {
	m, sess := newTestModel(t)
	sess.Notice("gone soon")
	m.Refresh()

	sess.Reset()
	m.Refresh()

	assert.Empty(t, m.rendered)
	assert.NotContains(t, m.View(), "gone soon")
}

func TestRefresh_PicksUpHints(t *testing.T) {
	m, sess := newTestModel(t)
	sess.Hints().Upsert(model.Hint{Key: model.HintKey{Item: 1}, Item: "Hookshot", Found: true})
	m.Refresh()

	assert.Equal(t, "1/1 found", m.HintsSummary())
	assert.Contains(t, m.View(), "Hookshot")
}

func TestSetShowTimestamps(t *testing.T) {
	m, sess := newTestModel(t)
	sess.Notice("hello")
	m.Refresh()
	line, _ := sess.Log().Last()

	m.SetShowTimestamps(true)
	assert.True(t, m.ShowTimestamps())
	require.Len(t, m.rendered, 1)
	assert.Contains(t, m.rendered[0], line.At.Format(timestampLayout))
}

func TestRenderLine_Wraps(t *testing.T) {
	line := model.Line{Text: strings.Repeat("word ", 10), At: time.Now()}
	out := renderLine(styles.NewTheme(), line, 12, false)
	for _, l := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(strings.TrimRight(l, " ")), 12)
	}

	long := model.Line{Text: strings.Repeat("x", 30)}
	assert.Equal(t, 3, len(strings.Split(renderLine(styles.NewTheme(), long, 10, false), "\n")))
}

// =============================================================================
// INPUT TESTS
// =============================================================================

func TestSubmit_SendsTrimmedText(t *testing.T) {
	m, _ := newTestModel(t)
	sayer := &fakeSayer{}
	m.SetClient(sayer)

	m = typeText(t, m, "  !hint Hookshot  ")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Empty(t, m.InputValue())

	msg, ok := cmd().(SayResultMsg)
	require.True(t, ok)
	assert.NoError(t, msg.Err)
	assert.Equal(t, []string{"!hint Hookshot"}, sayer.sent)
}

func TestSubmit_IgnoresBlank(t *testing.T) {
	m, _ := newTestModel(t)
	m = typeText(t, m, "   ")
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestSayResult_ErrorIsLogged(t *testing.T) {
	m, sess := newTestModel(t)
	m, _ = update(t, m, SayResultMsg{Text: "hi", Err: errors.New("boom")})

	last, ok := sess.Log().Last()
	require.True(t, ok)
	assert.Equal(t, "Failed to send message: boom", last.Text)
	assert.Contains(t, m.View(), "Failed to send message: boom")
}

func TestSayResult_SuccessAddsNothing(t *testing.T) {
	m, sess := newTestModel(t)
	_, _ = update(t, m, SayResultMsg{Text: "hi"})
	assert.True(t, sess.Log().IsEmpty())
}

func TestSayCmd_NoClient(t *testing.T) {
	msg := SayCmd(nil, "hi", time.Second)().(SayResultMsg)
	assert.ErrorIs(t, msg.Err, archipelago.ErrNotConnected)
}

func TestDisconnectKey(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	require.NotNil(t, cmd)
	assert.IsType(t, DisconnectRequestMsg{}, cmd())
}

func TestToggleHints(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Contains(t, m.View(), "No hints available.")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.NotContains(t, m.View(), "No hints available.")
}

func TestRefreshMsg(t *testing.T) {
	m, sess := newTestModel(t)
	sess.Notice("queued")
	m, _ = update(t, m, RefreshMsg{})
	assert.Contains(t, m.View(), "queued")
}
