package models

import "github.com/samber/lo"

// DefaultThumbnail is shown when neither the page nor its topic has an image
const DefaultThumbnail = "https://upload.wikimedia.org/wikipedia/commons/thumb/8/80/Wikipedia-logo-v2.svg/500px-Wikipedia-logo-v2.svg.png"

// TopicThumbnails maps a topic to the image used for pages of that topic without a thumbnail
var TopicThumbnails = map[Topic]string{
	"History":    "https://upload.wikimedia.org/wikipedia/commons/thumb/2/2c/Rosetta_Stone.JPG/500px-Rosetta_Stone.JPG",
	"Science":    "https://upload.wikimedia.org/wikipedia/commons/thumb/6/6f/Earth_Eastern_Hemisphere.jpg/500px-Earth_Eastern_Hemisphere.jpg",
	"Technology": "https://upload.wikimedia.org/wikipedia/commons/thumb/d/d3/Intel_8742_153056995.jpg/500px-Intel_8742_153056995.jpg",
	"Art":        "https://upload.wikimedia.org/wikipedia/commons/thumb/e/ec/Mona_Lisa%2C_by_Leonardo_da_Vinci%2C_from_C2RMF_retouched.jpg/500px-Mona_Lisa%2C_by_Leonardo_da_Vinci%2C_from_C2RMF_retouched.jpg",
	"Geography":  "https://upload.wikimedia.org/wikipedia/commons/thumb/8/83/Equirectangular_projection_SW.jpg/500px-Equirectangular_projection_SW.jpg",
}

// IsDefaultImage reports whether url is the generic or a topic placeholder
func IsDefaultImage(url string) bool {
	if url == DefaultThumbnail {
		return true
	}
	return lo.Contains(lo.Values(TopicThumbnails), url)
}

// HasOriginalImage is true only for a non-empty image that is not a placeholder
func HasOriginalImage(url string) bool {
	return url != "" && !IsDefaultImage(url)
}
