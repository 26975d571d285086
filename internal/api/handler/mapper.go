package handler

import "github.com/cbtutils/novedades/internal/core/ports"

// --- Request → Service input ---

func toAnnouncementInput(req announcementRequest) ports.AnnouncementInput {
	return ports.AnnouncementInput{
		Title:       req.Title,
		Summary:     req.Summary,
		Description: req.Description,
		Priority:    req.Priority,
		ExpiresOn:   req.ExpiresOn,
		EntityIDs:   req.EntityIDs,
	}
}

func toEntityInput(req entityRequest) ports.EntityInput {
	return ports.EntityInput{Name: req.Name, TypeID: req.TypeID}
}
