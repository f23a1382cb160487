package publer

import "strings"

// Network is the canonical platform key Publer expects in the
// per-network section of a post submission.
type Network string

const (
	NetworkInstagram Network = "instagram"
	NetworkFacebook  Network = "facebook"
	NetworkTwitter   Network = "twitter"
	NetworkTelegram  Network = "telegram"
	NetworkLinkedIn  Network = "linkedin"
	NetworkTikTok    Network = "tiktok"
	NetworkYouTube   Network = "youtube"
	NetworkPinterest Network = "pinterest"
	NetworkMastodon  Network = "mastodon"
)

// MapAccountType maps a raw Publer account type to its canonical
// network key. Publer reports sub-types for some platforms
// (ig_business, ig_creator, fb_page, fb_group, ...) which all address
// the same network in a submission. Unknown values are returned
// unchanged: they are assumed to already be canonical keys, so the
// mapping is idempotent.
func MapAccountType(raw string) Network {
	switch {
	case strings.HasPrefix(raw, "ig_"):
		return NetworkInstagram
	case strings.HasPrefix(raw, "fb_"):
		return NetworkFacebook
	}

	switch raw {
	case "instagram":
		return NetworkInstagram
	case "facebook":
		return NetworkFacebook
	case "twitter", "x":
		return NetworkTwitter
	case "telegram":
		return NetworkTelegram
	case "linkedin":
		return NetworkLinkedIn
	case "tiktok":
		return NetworkTikTok
	case "youtube":
		return NetworkYouTube
	case "pinterest":
		return NetworkPinterest
	case "mastodon":
		return NetworkMastodon
	}

	return Network(raw)
}
