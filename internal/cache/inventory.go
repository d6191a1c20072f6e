package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	PostKeyPrefix      = "post:%s"
	DrawerKeyPrefix    = "drawer:%s"
	DrawerListKey      = "drawers:all"
	PostsListKeyPrefix = "posts:list:%d:%d"
)

const (
	UserTTL     = 5 * time.Minute
	DrawerTTL   = 10 * time.Minute
	PostTTL     = 30 * time.Minute
	PostListTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// PostKey caches posts by slug since the public read path addresses them by
// slug, not ID.
func PostKey(slug string) string {
	return fmt.Sprintf(PostKeyPrefix, slug)
}

func DrawerKey(name string) string {
	return fmt.Sprintf(DrawerKeyPrefix, name)
}

func PostsListKey(limit, offset int) string {
	return fmt.Sprintf(PostsListKeyPrefix, limit, offset)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, slug string) {
	Invalidate(ctx, PostKey(slug))
}

func InvalidateDrawer(ctx context.Context, name string) {
	Invalidate(ctx, DrawerKey(name))
	Invalidate(ctx, DrawerListKey)
}

// InvalidatePostsList drops all cached pages of the global post listing.
func InvalidatePostsList(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "posts:list:*", 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
