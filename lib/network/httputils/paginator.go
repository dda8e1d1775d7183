package httputils

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tokenvote/tokenvote/lib/common"
	"github.com/tokenvote/tokenvote/lib/errors"
	"github.com/tokenvote/tokenvote/lib/storage"
)

const DefaultMaxLimit uint64 = 100

// Paginator parses cursor style paging parameters from the request
// query string: cursor, limit, reverse, and the offset shortcut used
// by the ranked results endpoints.
type Paginator struct {
	request *http.Request
	cursor  []byte
	offset  uint64
	reverse bool
	limit   uint64
}

func NewPaginator(r *http.Request) (*Paginator, error) {
	p := &Paginator{
		request: r,
		limit:   DefaultMaxLimit,
	}
	err := p.parseRequest()
	return p, err
}

func (p *Paginator) Limit() uint64 {
	return p.limit
}

func (p *Paginator) Offset() uint64 {
	return p.offset
}

func (p *Paginator) Reverse() bool {
	return p.reverse
}

func (p *Paginator) Cursor() []byte {
	return p.cursor
}

func (p *Paginator) SelfLink() string {
	return p.request.URL.String()
}

func (p *Paginator) NextLink() string {
	query := p.urlValues(p.offset + p.limit).Encode()
	return fmt.Sprintf("%s?%s", p.request.URL.Path, query)
}

func (p *Paginator) PrevLink() string {
	offset := uint64(0)
	if p.offset > p.limit {
		offset = p.offset - p.limit
	}
	query := p.urlValues(offset).Encode()
	return fmt.Sprintf("%s?%s", p.request.URL.Path, query)
}

func (p *Paginator) ListOptions() storage.ListOptions {
	return storage.NewDefaultListOptions(p.reverse, p.cursor, p.limit)
}

func (p *Paginator) parseRequest() error {
	q := p.request.URL.Query()

	if r := q.Get("reverse"); r != "" {
		reverse, err := common.ParseBoolQueryString(r)
		if err != nil {
			return err
		}
		p.reverse = reverse
	}

	if c := q.Get("cursor"); c != "" {
		p.cursor = []byte(c)
	}

	if o := q.Get("offset"); o != "" {
		offset, err := strconv.ParseUint(o, 10, 64)
		if err != nil {
			return errors.ErrorInvalidQueryString.Clone().SetData("offset", o)
		}
		p.offset = offset
	}

	if l := q.Get("limit"); l != "" {
		limit, err := strconv.ParseUint(l, 10, 64)
		if err != nil {
			return errors.ErrorInvalidQueryString.Clone().SetData("limit", l)
		}
		p.limit = limit
	}
	return nil
}

func (p Paginator) urlValues(offset uint64) url.Values {
	v := url.Values{}
	if offset > 0 {
		v.Set("offset", strconv.FormatUint(offset, 10))
	}
	if p.limit > 0 {
		v.Set("limit", strconv.FormatUint(p.limit, 10))
	}
	return v
}
