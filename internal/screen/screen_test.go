package screen

import "testing"

func newTestScreen() *Screen {
	return New(nil, nil)
}

func addTestTab(s *Screen, idx TabIndex, name string) *Tab {
	viewport := Rect{Rows: 24, Cols: 80}
	pane := NewTerminalPane(testPaneId(uint32(idx)+1), viewport)
	tab := NewTab(idx, name, pane, viewport)
	s.Tabs = append(s.Tabs, tab)
	return tab
}

func TestSetActiveTabAssignsExistingTab(t *testing.T) {
	s := newTestScreen()
	addTestTab(s, 0, "main")

	if !s.SetActiveTab(ClientId(1), 0) {
		t.Fatal("expected SetActiveTab to succeed for an existing tab")
	}
	tab, ok := s.ActiveTab(ClientId(1))
	if !ok || tab.Index != 0 {
		t.Fatalf("expected client 1's active tab to be 0, got %+v, ok=%v", tab, ok)
	}
}

func TestSetActiveTabRejectsUnknownTab(t *testing.T) {
	s := newTestScreen()
	if s.SetActiveTab(ClientId(1), 99) {
		t.Fatal("expected SetActiveTab to fail for a nonexistent tab")
	}
	if _, ok := s.ActiveTab(ClientId(1)); ok {
		t.Fatal("expected no active tab to be recorded")
	}
}

func TestRemoveClientClearsActiveTabAndFocus(t *testing.T) {
	s := newTestScreen()
	tab := addTestTab(s, 0, "main")
	client := ClientId(1)
	s.SetActiveTab(client, 0)
	tab.SetFocus(client, testPaneId(1))
	tab.ToggleFullscreen(client)

	s.RemoveClient(client)

	if _, ok := s.ActiveTab(client); ok {
		t.Fatal("expected active tab to be cleared")
	}
	if _, ok := tab.IsFullscreen(client); ok {
		t.Fatal("expected fullscreen state to be cleared")
	}
	if _, ok := tab.focused[client]; ok {
		t.Fatal("expected focus state to be cleared")
	}
}
