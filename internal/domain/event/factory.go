package event

import "strings"

func NewFromCreateRequest(req CreateEventRequest) Event {
	return Event{
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Location:       req.Location,
		DateTime:       req.DateTime.UTC(),
		OrganizationID: req.OrganizationID,
	}
}
