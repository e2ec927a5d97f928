package service

import (
	"github.com/mehdirazajaffri/leads-management-system/internal/callbacks/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/callbacks/transport"
	"github.com/mehdirazajaffri/leads-management-system/platform/datatable"
)

// Columns drives search and sort of the callback table.
var Columns = []datatable.Column[transport.CallbackResponse]{
	{
		ID:     "scheduledDate",
		Header: "Scheduled",
		Render: func(r transport.CallbackResponse) any { return r.ScheduledDate },
		SortValue: func(r transport.CallbackResponse) datatable.SortKey {
			if r.ScheduledTime == nil {
				return datatable.String(r.ScheduledDate)
			}
			return datatable.String(r.ScheduledDate + " " + *r.ScheduledTime)
		},
	},
	{
		ID:          "lead",
		Header:      "Lead",
		Render:      func(r transport.CallbackResponse) any { return r.Lead.Name },
		SortValue:   func(r transport.CallbackResponse) datatable.SortKey { return datatable.String(r.Lead.Name) },
		SearchValue: func(r transport.CallbackResponse) string { return r.Lead.Name },
	},
	{
		ID:          "phone",
		Header:      "Phone",
		Render:      func(r transport.CallbackResponse) any { return r.Lead.Phone },
		SearchValue: func(r transport.CallbackResponse) string { return r.Lead.Phone },
	},
	{
		ID:     "notes",
		Header: "Notes",
		Render: func(r transport.CallbackResponse) any { return r.Notes },
		SearchValue: func(r transport.CallbackResponse) string {
			if r.Notes == nil {
				return ""
			}
			return *r.Notes
		},
	},
	{
		ID:     "completed",
		Header: "Completed",
		Render: func(r transport.CallbackResponse) any { return r.Completed },
		SortValue: func(r transport.CallbackResponse) datatable.SortKey {
			if r.Completed {
				return datatable.Number(1)
			}
			return datatable.Number(0)
		},
	},
}

func ToResponse(cb repository.Callback) transport.CallbackResponse {
	return transport.CallbackResponse{
		ID:            cb.ID,
		LeadID:        cb.LeadID,
		ScheduledDate: cb.ScheduledDate.Format(transport.DateLayout),
		ScheduledTime: cb.ScheduledTime,
		Notes:         cb.Notes,
		Completed:     cb.Completed,
		CompletedAt:   cb.CompletedAt,
		CreatedAt:     cb.CreatedAt,
		UpdatedAt:     cb.UpdatedAt,
		Lead: transport.LeadSummary{
			ID:    cb.LeadID,
			Name:  cb.LeadName,
			Email: cb.LeadEmail,
			Phone: cb.LeadPhone,
		},
	}
}
