package resource

import (
	"github.com/nvellon/hal"
)

type APIResource interface {
	LinkSelf() string
	Resource() *hal.Resource
	GetMap() hal.Entry
}

type ResourceList struct {
	Resources []APIResource
	SelfLink  string
	NextLink  string
	PrevLink  string
}

func NewResourceList(resources []APIResource, selfLink, nextLink, prevLink string) *ResourceList {
	return &ResourceList{
		Resources: resources,
		SelfLink:  selfLink,
		NextLink:  nextLink,
		PrevLink:  prevLink,
	}
}

func (l ResourceList) Resource() *hal.Resource {
	rl := hal.NewResource(struct{}{}, l.LinkSelf())
	// always embed as a collection: hal renders a single Embed as a
	// bare object, so one-record pages would change shape on the wire
	records := hal.ResourceCollection{}
	for _, apiResource := range l.Resources {
		records = append(records, apiResource.Resource())
	}
	rl.Embedded.SetCollection("records", records)
	if len(l.PrevLink) > 0 {
		rl.AddLink("prev", hal.NewLink(l.PrevLink))
	}
	if len(l.NextLink) > 0 {
		rl.AddLink("next", hal.NewLink(l.NextLink))
	}

	return rl
}

func (l ResourceList) LinkSelf() string {
	return l.SelfLink
}

func (l ResourceList) GetMap() hal.Entry {
	return hal.Entry{}
}
