package storage

import (
	"fmt"
	"sync"

	"resident-portal/domain"
)

// FeedStore holds the social feed in memory: one community stream shared by
// everyone plus a personal stream per resident. Mirrors the portal's mock
// data model; nothing survives a restart.
type FeedStore struct {
	mu       sync.Mutex
	communal []domain.Post
	personal map[string][]domain.Post
	likedBy  map[string]map[string]struct{}
}

func NewFeedStore(communal []domain.Post, personal map[string][]domain.Post) *FeedStore {
	if personal == nil {
		personal = map[string][]domain.Post{}
	}
	return &FeedStore{communal: communal, personal: personal, likedBy: map[string]map[string]struct{}{}}
}

// Posts returns the community stream, or the resident's personal stream when
// community is false. Unknown residents get an empty stream.
func (f *FeedStore) Posts(residentID string, community bool) []domain.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	src := f.communal
	if !community {
		src = f.personal[residentID]
	}
	out := make([]domain.Post, len(src))
	copy(out, src)
	return out
}

// Like toggles userID's like on a post: first call likes it, second call
// takes the like back. Returns the new total and whether the post is now
// liked by that user.
func (f *FeedStore) Like(postID, userID string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post := f.find(postID)
	if post == nil {
		return 0, false, fmt.Errorf("post %s not found", postID)
	}
	users := f.likedBy[postID]
	if users == nil {
		users = map[string]struct{}{}
		f.likedBy[postID] = users
	}
	if _, liked := users[userID]; liked {
		delete(users, userID)
		post.Likes--
		return post.Likes, false, nil
	}
	users[userID] = struct{}{}
	post.Likes++
	return post.Likes, true, nil
}

// AddComment appends a comment to a post.
func (f *FeedStore) AddComment(postID string, c domain.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	post := f.find(postID)
	if post == nil {
		return fmt.Errorf("post %s not found", postID)
	}
	post.Comments = append(post.Comments, c)
	return nil
}

func (f *FeedStore) find(postID string) *domain.Post {
	for i := range f.communal {
		if f.communal[i].ID == postID {
			return &f.communal[i]
		}
	}
	for _, posts := range f.personal {
		for i := range posts {
			if posts[i].ID == postID {
				return &posts[i]
			}
		}
	}
	return nil
}

// RequestStore tracks per-resident item and service requests in memory.
type RequestStore struct {
	mu         sync.Mutex
	byResident map[string][]domain.Request
}

func NewRequestStore(seed map[string][]domain.Request) *RequestStore {
	if seed == nil {
		seed = map[string][]domain.Request{}
	}
	return &RequestStore{byResident: seed}
}

// List returns the resident's requests, newest first.
func (r *RequestStore) List(residentID string) []domain.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	src := r.byResident[residentID]
	out := make([]domain.Request, len(src))
	copy(out, src)
	return out
}

// Add prepends a new request so recent asks show first.
func (r *RequestStore) Add(residentID string, req domain.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byResident[residentID] = append([]domain.Request{req}, r.byResident[residentID]...)
}

// Complete marks a request done. Completing an already-completed or unknown
// request is an error so the confirmation dialog cannot double-fire.
func (r *RequestStore) Complete(residentID, requestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reqs := r.byResident[residentID]
	for i := range reqs {
		if reqs[i].ID != requestID {
			continue
		}
		if reqs[i].Completed {
			return fmt.Errorf("request %s already completed", requestID)
		}
		reqs[i].Completed = true
		return nil
	}
	return fmt.Errorf("request %s not found", requestID)
}

// OpenCount returns how many of the resident's requests are still open.
func (r *RequestStore) OpenCount(residentID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, req := range r.byResident[residentID] {
		if !req.Completed {
			n++
		}
	}
	return n
}
