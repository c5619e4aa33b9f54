package service

import (
	"encoding/base64"
	"strings"

	"github.com/QuietRecursion/ImageTagger/internal/model"
)

// resolveImageSource enforces the exactly-one-source rule of POST /images
func resolveImageSource(req *model.ImageCreateRequest) (model.ImageSource, error) {
	switch {
	case req.ImageURL != "" && req.ImageBase64 != "":
		return model.ImageSource{}, model.ErrImageSourceConflict
	case req.ImageURL == "" && req.ImageBase64 == "":
		return model.ImageSource{}, model.ErrImageSourceMissing
	case req.ImageURL != "":
		return model.ImageSource{URL: req.ImageURL}, nil
	default:
		return model.ImageSource{Base64: req.ImageBase64}, nil
	}
}

// resolveTagFilter maps GET /images query-params onto a repo filter;
// objects and some_objects together is a client error
func resolveTagFilter(q *model.ListQuery) ([]string, model.MatchMode, error) {
	switch {
	case q.Objects != "" && q.SomeObjects != "":
		return nil, "", model.ErrFilterConflict
	case q.Objects != "":
		return splitTagList(q.Objects), model.MatchAll, nil
	case q.SomeObjects != "":
		return splitTagList(q.SomeObjects), model.MatchAny, nil
	default:
		return nil, "", nil
	}
}

// splitTagList splits the comma-separated list verbatim (case preserved),
// dropping empty elements and duplicates
func splitTagList(raw string) []string {
	return dedupeTags(strings.Split(raw, ","))
}

func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// resolveLabel: a supplied label is used verbatim, otherwise one is generated
// from the detected tags
func resolveLabel(label *string, tags []string) string {
	if label != nil {
		return *label
	}
	return generateLabel(tags)
}

func generateLabel(tags []string) string {
	if len(tags) == 0 {
		return "An untagged image"
	}
	return "An image containing " + strings.Join(tags, ", ") + "."
}

// decodeBase64Payload tolerates a data-URI prefix and both padded and
// unpadded encodings
func decodeBase64Payload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		if i := strings.IndexByte(payload, ','); i >= 0 {
			payload = payload[i+1:]
		}
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return raw, nil
	}
	return base64.RawStdEncoding.DecodeString(payload)
}
