package secondary

import "context"

// TweetSource reads the text of a public tweet. The claim flow only needs
// the visible text; how it is obtained is an adapter concern.
type TweetSource interface {
	TweetText(ctx context.Context, handle, tweetID string) (string, error)
}
