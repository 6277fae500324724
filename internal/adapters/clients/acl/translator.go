package acl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

var errNoQuote = errors.New("response contained no quote")

// quotableQuote is the upstream shape. Only the fields the widget keeps
// are decoded.
type quotableQuote struct {
	Content string   `json:"content"`
	Author  string   `json:"author"`
	Tags    []string `json:"tags"`
}

// decodeRandom accepts both a single quote object (/random) and a
// one-element array (/quotes/random).
func decodeRandom(body []byte) (quotableQuote, error) {
	body = bytes.TrimSpace(body)

	if len(body) > 0 && body[0] == '[' {
		var list []quotableQuote
		if err := json.Unmarshal(body, &list); err != nil {
			return quotableQuote{}, fmt.Errorf("decoding quote list: %w", err)
		}
		if len(list) == 0 {
			return quotableQuote{}, errNoQuote
		}
		return list[0], nil
	}

	var q quotableQuote
	if err := json.Unmarshal(body, &q); err != nil {
		return quotableQuote{}, fmt.Errorf("decoding quote: %w", err)
	}
	return q, nil
}

// toDomain maps an upstream quote to the widget's model. The first tag
// becomes the category; the author is dropped. The result is not
// validated here: the store applies the usual add rules.
func toDomain(ext quotableQuote) domain.Quote {
	return domain.Quote{
		Text:     ext.Content,
		Category: categoryFromTags(ext.Tags),
	}
}

// categoryFromTags turns "famous-quotes" into "Famous Quotes".
func categoryFromTags(tags []string) string {
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.ReplaceAll(tag, "-", " "))
		if tag != "" {
			return cases.Title(language.English).String(tag)
		}
	}
	return ""
}
