package storage

import (
	"testing"

	"resident-portal/domain"
)

func TestFeedStoreStreams(t *testing.T) {
	fs := NewFeedStore(
		[]domain.Post{{ID: "c1", Author: "Admin", Content: "Bingo Friday"}},
		map[string][]domain.Post{
			"r1": {{ID: "r1p1", Author: "Alice Johnson", Content: "Garden walk"}},
		},
	)

	if got := fs.Posts("r1", true); len(got) != 1 || got[0].ID != "c1" {
		t.Fatalf("unexpected community stream: %#v", got)
	}
	if got := fs.Posts("r1", false); len(got) != 1 || got[0].ID != "r1p1" {
		t.Fatalf("unexpected personal stream: %#v", got)
	}
	if got := fs.Posts("r9", false); len(got) != 0 {
		t.Fatalf("expected empty stream for unknown resident, got %#v", got)
	}
}

func TestFeedStoreLikeTogglesPerUser(t *testing.T) {
	fs := NewFeedStore([]domain.Post{{ID: "c1", Likes: 5}}, nil)

	likes, liked, err := fs.Like("c1", "u1")
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if likes != 6 || !liked {
		t.Fatalf("expected 6 likes and liked=true, got %d/%v", likes, liked)
	}

	likes, liked, err = fs.Like("c1", "u2")
	if err != nil {
		t.Fatalf("like from second user: %v", err)
	}
	if likes != 7 || !liked {
		t.Fatalf("second user should be independent, got %d/%v", likes, liked)
	}

	likes, liked, err = fs.Like("c1", "u1")
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if likes != 6 || liked {
		t.Fatalf("liking twice should take the like back, got %d/%v", likes, liked)
	}

	if _, _, err := fs.Like("missing", "u1"); err == nil {
		t.Fatal("expected error for unknown post")
	}
}

func TestFeedStoreComment(t *testing.T) {
	fs := NewFeedStore([]domain.Post{{ID: "c1"}}, nil)

	if err := fs.AddComment("c1", domain.Comment{ID: "x", Author: "Bob Smith", Text: "See you there"}); err != nil {
		t.Fatalf("comment: %v", err)
	}
	got := fs.Posts("", true)
	if len(got[0].Comments) != 1 || got[0].Comments[0].Text != "See you there" {
		t.Fatalf("comment not attached: %#v", got[0].Comments)
	}
}

func TestRequestStoreLifecycle(t *testing.T) {
	rs := NewRequestStore(map[string][]domain.Request{
		"r1": {{ID: "q1", Type: domain.RequestItem, Text: "Extra blanket"}},
	})

	rs.Add("r1", domain.Request{ID: "q2", Type: domain.RequestService, Text: "Fix the lamp"})
	got := rs.List("r1")
	if len(got) != 2 || got[0].ID != "q2" {
		t.Fatalf("expected newest request first, got %#v", got)
	}
	if rs.OpenCount("r1") != 2 {
		t.Fatalf("expected 2 open requests, got %d", rs.OpenCount("r1"))
	}

	if err := rs.Complete("r1", "q1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if rs.OpenCount("r1") != 1 {
		t.Fatalf("expected 1 open request, got %d", rs.OpenCount("r1"))
	}
	if err := rs.Complete("r1", "q1"); err == nil {
		t.Fatal("expected error completing twice")
	}
	if err := rs.Complete("r1", "missing"); err == nil {
		t.Fatal("expected error for unknown request")
	}
}
