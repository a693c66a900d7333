// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aptui/internal/archipelago"
	"github.com/jeranaias/aptui/internal/config"
	"github.com/jeranaias/aptui/internal/model"
)

// =============================================================================
// PARSER TESTS
// =============================================================================

func parse(t *testing.T, args ...string) (*CLI, string) {
	t.Helper()
	var c CLI
	parser, err := NewParser(&c)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &c, ctx.Command()
}

func TestParse_DefaultsToTUI(t *testing.T) {
	_, cmd := parse(t)
	assert.Equal(t, "tui", cmd)
}

func TestParse_TUIFlags(t *testing.T) {
	c, cmd := parse(t, "tui", "--server", "localhost:38281", "-n", "Alice", "--connect")
	assert.Equal(t, "tui", cmd)
	assert.Equal(t, "localhost:38281", c.TUI.Conn.Server)
	assert.Equal(t, "Alice", c.TUI.Conn.Slot)
	assert.True(t, c.TUI.Connect)
}

func TestParse_Say(t *testing.T) {
	c, cmd := parse(t, "say", "!hint", "Hookshot")
	assert.Equal(t, "say <text>", cmd)
	assert.Equal(t, "!hint Hookshot", c.Say.Message())
}

func TestParse_Hints(t *testing.T) {
	c, _ := parse(t, "hints", "--pending", "--wait", "3s")
	assert.True(t, c.Hints.Pending)
	assert.Equal(t, 3*time.Second, c.Hints.Wait)

	c, _ = parse(t, "hints")
	assert.Equal(t, 10*time.Second, c.Hints.Wait)
}

func TestParse_ConfigDefaultsToShow(t *testing.T) {
	_, cmd := parse(t, "config")
	assert.Equal(t, "config show", cmd)

	c, cmd := parse(t, "config", "set", "ui.theme", "light")
	assert.Equal(t, "config set <key> <value>", cmd)
	assert.Equal(t, "ui.theme", c.Config.Set.Key)
	assert.Equal(t, "light", c.Config.Set.Value)
}

func TestLoadGlobals_RejectsBadLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, config.SaveTOML(config.Default(), path))
	t.Cleanup(config.ResetGlobalForTesting)

	c := &CLI{ConfigFile: path, LogLevel: "loud"}
	_, err := c.LoadGlobals()
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))

	c.LogLevel = "debug"
	g, err := c.LoadGlobals()
	require.NoError(t, err)
	assert.Equal(t, "debug", g.Config.Logging.Level)
	assert.Equal(t, path, g.ConfigPath)
}

// =============================================================================
// TARGET AND ERROR TESTS
// =============================================================================

func TestResolve(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Slot = "Alice"
	cfg.Server.Password = "secret"

	target, err := ConnectFlags{}.Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, "archipelago.gg:38281", target.Server)
	assert.Equal(t, "Alice", target.Slot)
	assert.Equal(t, "secret", target.Password)
	assert.Equal(t, 10*time.Second, target.Timeout)

	target, err = ConnectFlags{Server: "localhost", Slot: "Bob", Timeout: time.Second}.Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, "localhost", target.Server)
	assert.Equal(t, "Bob", target.Slot)
	assert.Equal(t, time.Second, target.Timeout)
}

func TestResolve_MissingSlot(t *testing.T) {
	_, err := ConnectFlags{}.Resolve(config.Default())
	assert.ErrorIs(t, err, ErrNoSlot)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("x"), ExitGeneralError},
		{"command", &CommandError{Code: ExitConfigError, Err: errors.New("x")}, ExitConfigError},
		{"timeout", fmt.Errorf("wrap: %w", archipelago.ErrTimeout), ExitTimeoutError},
		{"refused", archipelago.ErrRefused, ExitAuthError},
		{"not connected", archipelago.ErrNotConnected, ExitNetworkError},
		{"validation", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "ui.theme", Message: "bad"}}), ExitConfigError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestTTYRequiredError(t *testing.T) {
	err := &TTYRequiredError{Operation: "read the room password"}
	assert.Equal(t, "stdin is not a terminal; cannot read the room password interactively", err.Error())
}

// =============================================================================
// CONFIG COMMAND TESTS
// =============================================================================

func testGlobals(t *testing.T) (*Globals, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &Globals{
		Config:     config.Default(),
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Stdout:     &out,
		Stderr:     &bytes.Buffer{},
	}, &out
}

func TestConfigInitAndSet(t *testing.T) {
	g, out := testGlobals(t)

	require.NoError(t, (&ConfigInitCmd{}).Run(g))
	_, err := os.Stat(g.ConfigPath)
	require.NoError(t, err)

	err = (&ConfigInitCmd{}).Run(g)
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, ExitCode(err))
	require.NoError(t, (&ConfigInitCmd{Force: true}).Run(g))

	out.Reset()
	require.NoError(t, (&ConfigSetCmd{Key: "ui.show_timestamps", Value: "true"}).Run(g))
	assert.Equal(t, "ui.show_timestamps = true\n", out.String())

	loaded, err := config.LoadFromPath(g.ConfigPath)
	require.NoError(t, err)
	assert.True(t, loaded.UI.ShowTimestamps)
}

func TestConfigSet_Rejects(t *testing.T) {
	g, _ := testGlobals(t)

	err := (&ConfigSetCmd{Key: "ui.nope", Value: "x"}).Run(g)
	assert.Equal(t, ExitUsageError, ExitCode(err))

	err = (&ConfigSetCmd{Key: "ui.theme", Value: "neon"}).Run(g)
	assert.Equal(t, ExitConfigError, ExitCode(err))
	_, statErr := os.Stat(g.ConfigPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestConfigShow_RedactsPassword(t *testing.T) {
	g, out := testGlobals(t)
	g.Config.Server.Password = "hunter2"

	require.NoError(t, (&ConfigShowCmd{}).Run(g))
	assert.Contains(t, out.String(), `server.url = "archipelago.gg:38281"`)
	assert.Contains(t, out.String(), "server.password = [REDACTED]")
	assert.Contains(t, out.String(), "client.tags = [TextOnly]")
	assert.NotContains(t, out.String(), "hunter2")
}

func TestConfigGetAndPath(t *testing.T) {
	g, out := testGlobals(t)

	require.NoError(t, (&ConfigGetCmd{Key: "client.say_burst"}).Run(g))
	assert.Equal(t, "5\n", out.String())

	out.Reset()
	require.NoError(t, (&ConfigPathCmd{}).Run(g))
	assert.Equal(t, g.ConfigPath+"\n", out.String())
}

// =============================================================================
// HINTS OUTPUT TESTS
// =============================================================================

var sampleHints = []model.Hint{
	{
		Key:    model.HintKey{FindingPlayer: 2, ReceivingPlayer: 1, Location: 10, Item: 1},
		Sender: "Bob", Receiver: "Alice", SenderSlot: 2, ReceiverSlot: 1,
		Item: "Hookshot", ItemFlags: model.FlagProgression,
		Location: "Kakariko Well", LocationGame: "Ocarina of Time",
		Found: true,
	},
	{
		Key:    model.HintKey{FindingPlayer: 1, ReceivingPlayer: 2, Location: 11, Item: 2},
		Sender: "Alice", Receiver: "Bob", SenderSlot: 1, ReceiverSlot: 2,
		Item: "Rupee", Location: "Link's House", LocationGame: "A Link to the Past",
	},
}

func asciiOutput(w *bytes.Buffer) *termenv.Output {
	return termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
}

func TestPrintHints_Plain(t *testing.T) {
	var buf bytes.Buffer
	PrintHints(&buf, asciiOutput(&buf), sampleHints, 1)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "Sender  Receiver  Item"))
	assert.Contains(t, lines[1], "Ocarina of Time - Kakariko Well")
	assert.True(t, strings.HasSuffix(lines[1], "Found"))
	assert.True(t, strings.HasSuffix(lines[2], "Not Found"))
	assert.Equal(t, strings.Index(lines[0], "Item"), strings.Index(lines[1], "Hookshot"))
	assert.Equal(t, "1/2 found", lines[4])
}

func TestPrintHints_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintHints(&buf, asciiOutput(&buf), nil, 1)
	assert.Equal(t, "No hints available.\n", buf.String())
}

func TestPrintHints_Colors(t *testing.T) {
	var buf bytes.Buffer
	out := termenv.NewOutput(&buf, termenv.WithProfile(termenv.TrueColor))
	PrintHints(&buf, out, sampleHints, 1)

	s := buf.String()
	assert.Contains(t, s, "38;2;128;0;128")  // local slot
	assert.Contains(t, s, "38;2;175;153;239") // progression item
	assert.Contains(t, s, "38;2;0;255;127")   // found
	assert.Contains(t, s, "38;2;136;136;136") // filler item
}

func TestPendingHints(t *testing.T) {
	pending := PendingHints(sampleHints)
	require.Len(t, pending, 1)
	assert.Equal(t, "Rupee", pending[0].Item)
}

// =============================================================================
// TAILER TESTS
// =============================================================================

type fakeSource struct {
	self        archipelago.Player
	messages    []func(archipelago.MessageEvent)
	initialized []func([]model.Hint)
	updated     []func(model.Hint)
	disconnects []func(archipelago.DisconnectEvent)
	active      int
}

func subscribe[T any](f *fakeSource, list *[]T, fn T) *archipelago.Subscription {
	*list = append(*list, fn)
	f.active++
	return archipelago.NewSubscription(func() { f.active-- })
}

func (f *fakeSource) OnMessage(fn func(archipelago.MessageEvent)) *archipelago.Subscription {
	return subscribe(f, &f.messages, fn)
}

func (f *fakeSource) OnHintsInitialized(fn func([]model.Hint)) *archipelago.Subscription {
	return subscribe(f, &f.initialized, fn)
}

func (f *fakeSource) OnHintUpdated(fn func(model.Hint)) *archipelago.Subscription {
	return subscribe(f, &f.updated, fn)
}

func (f *fakeSource) OnDisconnect(fn func(archipelago.DisconnectEvent)) *archipelago.Subscription {
	return subscribe(f, &f.disconnects, fn)
}

func (f *fakeSource) Self() archipelago.Player { return f.self }

func (f *fakeSource) say(nodes ...archipelago.MessageNode) {
	for _, fn := range f.messages {
		fn(archipelago.MessageEvent{Nodes: nodes})
	}
}

func (f *fakeSource) drop(err error) {
	for _, fn := range f.disconnects {
		fn(archipelago.DisconnectEvent{Err: err})
	}
}

func textNode(s string) archipelago.MessageNode {
	return archipelago.MessageNode{Type: archipelago.NodeText, Text: s}
}

func TestTailer_PrintsUntilDisconnect(t *testing.T) {
	src := &fakeSource{self: archipelago.Player{Slot: 1, Alias: "Alice"}}
	var buf bytes.Buffer
	tailer := NewTailer(src, &buf, TailOptions{Output: asciiOutput(&buf)})
	defer tailer.Close()

	alice := archipelago.Player{Slot: 1, Alias: "Alice"}
	src.say(archipelago.MessageNode{Type: archipelago.NodePlayer, Text: "Alice", Player: &alice}, textNode(" joined"))
	src.say(textNode("Bob: hi"))
	src.drop(errors.New("connection lost"))

	err := tailer.Run(context.Background())
	assert.EqualError(t, err, "connection lost")
	assert.Equal(t, "Alice joined\nBob: hi\n", buf.String())
}

func TestTailer_Timestamps(t *testing.T) {
	src := &fakeSource{}
	var buf bytes.Buffer
	tailer := NewTailer(src, &buf, TailOptions{Output: asciiOutput(&buf), Timestamps: true})
	defer tailer.Close()

	src.say(textNode("tick"))
	src.drop(nil)

	require.NoError(t, tailer.Run(context.Background()))
	line := strings.TrimSpace(buf.String())
	require.Len(t, line, len("15:04:05 tick"))
	assert.True(t, strings.HasSuffix(line, " tick"))
}

func TestTailer_StopsOnContext(t *testing.T) {
	src := &fakeSource{}
	var buf bytes.Buffer
	tailer := NewTailer(src, &buf, TailOptions{Output: asciiOutput(&buf)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, tailer.Run(ctx))

	assert.Equal(t, 4, src.active)
	tailer.Close()
	tailer.Close()
	assert.Equal(t, 0, src.active)
}

func TestTailer_DoesNotBlockSourceAfterRun(t *testing.T) {
	src := &fakeSource{}
	var buf bytes.Buffer
	tailer := NewTailer(src, &buf, TailOptions{Output: asciiOutput(&buf)})
	defer tailer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, tailer.Run(ctx))

	// More events than the queue holds, with nobody running the tailer.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 300; i++ {
			src.say(textNode("late"))
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("source blocked after the tailer stopped")
	}
	assert.Empty(t, buf.String())
}

// =============================================================================
// END-TO-END TESTS AGAINST A FAKE SERVER
// =============================================================================

type fakeServer struct {
	t        *testing.T
	srv      *httptest.Server
	password string
	says     chan string
}

func newFakeServer(t *testing.T, password string) *fakeServer {
	t.Helper()
	fs := &fakeServer{t: t, password: password, says: make(chan string, 4)}
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	fs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		fs.serve(conn)
	}))
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) url() string {
	return "ws" + strings.TrimPrefix(fs.srv.URL, "http")
}

func (fs *fakeServer) write(conn *websocket.Conn, packets ...any) {
	data, err := json.Marshal(packets)
	require.NoError(fs.t, err)
	conn.WriteMessage(websocket.TextMessage, data)
}

func (fs *fakeServer) serve(conn *websocket.Conn) {
	fs.write(conn, map[string]any{
		"cmd":      archipelago.CmdRoomInfo,
		"password": fs.password != "",
		"games":    []string{"Clique"},
		"version":  archipelago.ClientVersion,
	})
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return
		}
		packets, err := archipelago.DecodeFrame(frame)
		if err != nil {
			return
		}
		for _, pkt := range packets {
			fs.reply(conn, pkt)
		}
	}
}

func (fs *fakeServer) reply(conn *websocket.Conn, pkt archipelago.Packet) {
	switch pkt.Cmd {
	case archipelago.CmdGetDataPackage:
		fs.write(conn, map[string]any{
			"cmd": archipelago.CmdDataPackage,
			"data": map[string]any{"games": map[string]archipelago.GameData{
				"Clique": {
					ItemNameToID:     map[string]int64{"Button Activation": 1},
					LocationNameToID: map[string]int64{"The Big Red Button": 2},
				},
			}},
		})

	case archipelago.CmdConnect:
		var cp archipelago.ConnectPacket
		pkt.Decode(&cp)
		if cp.Password != fs.password {
			fs.write(conn, map[string]any{"cmd": archipelago.CmdConnectionRefused, "errors": []string{"InvalidPassword"}})
			return
		}
		fs.write(conn, map[string]any{
			"cmd":       archipelago.CmdConnected,
			"team":      0,
			"slot":      1,
			"players":   []archipelago.NetworkPlayer{{Team: 0, Slot: 1, Alias: "Alice", Name: "Alice"}},
			"slot_info": map[string]archipelago.NetworkSlot{"1": {Name: "Alice", Game: "Clique"}},
		})

	case archipelago.CmdGet:
		fs.write(conn, map[string]any{
			"cmd": archipelago.CmdRetrieved,
			"keys": map[string]any{archipelago.HintsKey(0, 1): []archipelago.NetworkHint{
				{ReceivingPlayer: 1, FindingPlayer: 1, Location: 2, Item: 1, Found: true, ItemFlags: 1},
			}},
		})

	case archipelago.CmdSay:
		var sp archipelago.SayPacket
		pkt.Decode(&sp)
		fs.says <- sp.Text
	}
}

func serverGlobals(t *testing.T, fs *fakeServer) (*Globals, *bytes.Buffer) {
	g, out := testGlobals(t)
	g.Config.Server.URL = fs.url()
	g.Config.Server.Slot = "Alice"
	g.Config.Server.ConnectTimeoutSecs = 5
	return g, out
}

func TestSayCmd_EndToEnd(t *testing.T) {
	fs := newFakeServer(t, "")
	g, _ := serverGlobals(t, fs)

	require.NoError(t, (&SayCmd{Text: []string{"hello", "world"}}).Run(g))
	select {
	case text := <-fs.says:
		assert.Equal(t, "hello world", text)
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the message")
	}
}

func TestSayCmd_EmptyText(t *testing.T) {
	g, _ := testGlobals(t)
	err := (&SayCmd{Text: []string{"  "}}).Run(g)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestHintsCmd_EndToEnd(t *testing.T) {
	fs := newFakeServer(t, "")
	g, out := serverGlobals(t, fs)

	require.NoError(t, (&HintsCmd{Wait: 2 * time.Second, Plain: true}).Run(g))
	assert.Contains(t, out.String(), "Button Activation")
	assert.Contains(t, out.String(), "Clique - The Big Red Button")
	assert.Contains(t, out.String(), "1/1 found")
}

func TestConnect_PasswordRequired(t *testing.T) {
	fs := newFakeServer(t, "secret")
	g, _ := serverGlobals(t, fs)

	client := NewClient(g.Config)
	_, err := Connect(context.Background(), g, client, ConnectFlags{})
	require.Error(t, err)
	assert.True(t, NeedsPassword(client, err))
	assert.Equal(t, ExitAuthError, ExitCode(err))

	_, err = Connect(context.Background(), g, client, ConnectFlags{Password: "secret"})
	require.NoError(t, err)
	require.NoError(t, client.Disconnect())
}

func TestConnect_PromptsForPassword(t *testing.T) {
	fs := newFakeServer(t, "secret")
	g, _ := serverGlobals(t, fs)

	var prompts []string
	g.Prompt = func(prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return "secret", nil
	}

	client := NewClient(g.Config)
	target, err := Connect(context.Background(), g, client, ConnectFlags{})
	require.NoError(t, err)
	defer client.Disconnect()

	assert.Equal(t, []string{"Password for Alice: "}, prompts)
	assert.Equal(t, "secret", target.Password)
	assert.True(t, client.Connected())
}
