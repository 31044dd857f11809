package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix      = "post:%d"
	PostLikesKeyPrefix = "post:%d:likes"
)

const (
	PostTTL      = 5 * time.Minute
	PostLikesTTL = time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func PostLikesKey(postID uint) string {
	return fmt.Sprintf(PostLikesKeyPrefix, postID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
	Invalidate(ctx, PostLikesKey(postID))
}
