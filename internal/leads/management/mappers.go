package management

import (
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/domain"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/transport"
	"github.com/mehdirazajaffri/leads-management-system/platform/datatable"
)

// ToLeadResponse converts a joined lead row to its wire form.
func ToLeadResponse(d repository.LeadDetail) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:              d.ID,
		Name:            d.Name,
		Phone:           d.Phone,
		Email:           d.Email,
		SourcePlatform:  d.SourcePlatform,
		CampaignName:    d.CampaignName,
		Status:          toStatusResponse(d.Status),
		IsArchived:      d.IsArchived,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		LastContactedAt: d.LastContactedAt,
	}
	if d.AssignedToID != nil {
		ref := transport.AgentRef{ID: *d.AssignedToID}
		if d.AgentName != nil {
			ref.Name = *d.AgentName
		}
		if d.AgentEmail != nil {
			ref.Email = *d.AgentEmail
		}
		resp.AssignedTo = &ref
	}
	return resp
}

func ToCallbackResponse(cb repository.Callback) transport.CallbackResponse {
	return transport.CallbackResponse{
		ID:            cb.ID,
		LeadID:        cb.LeadID,
		ScheduledDate: cb.ScheduledDate.Format(transport.DateLayout),
		ScheduledTime: cb.ScheduledTime,
		Notes:         cb.Notes,
		Completed:     cb.Completed,
		CompletedAt:   cb.CompletedAt,
		CreatedAt:     cb.CreatedAt,
	}
}

func ToActivityLogResponse(a repository.ActivityLog) transport.ActivityLogResponse {
	return transport.ActivityLogResponse{
		ID:          a.ID,
		LeadID:      a.LeadID,
		AgentID:     a.AgentID,
		OldStatusID: a.OldStatusID,
		NewStatusID: a.NewStatusID,
		Note:        a.Note,
		IsPrivate:   a.IsPrivate,
		CreatedAt:   a.CreatedAt,
	}
}

func toStatusResponse(s domain.Status) transport.StatusResponse {
	return transport.StatusResponse{ID: s.ID, Name: s.Name, IsFinal: s.IsFinal}
}

func leadRowID(l transport.LeadResponse) string { return l.ID.String() }

func agentName(l transport.LeadResponse) string {
	if l.AssignedTo == nil {
		return ""
	}
	return l.AssignedTo.Name
}

// LeadColumns is the lead table: every text column is searchable, every
// column is sortable.
var LeadColumns = []datatable.Column[transport.LeadResponse]{
	{
		ID:          "name",
		Header:      "Name",
		Render:      func(l transport.LeadResponse) any { return l.Name },
		SortValue:   func(l transport.LeadResponse) datatable.SortKey { return datatable.String(l.Name) },
		SearchValue: func(l transport.LeadResponse) string { return l.Name },
	},
	{
		ID:          "phone",
		Header:      "Phone",
		Render:      func(l transport.LeadResponse) any { return l.Phone },
		SortValue:   func(l transport.LeadResponse) datatable.SortKey { return datatable.String(l.Phone) },
		SearchValue: func(l transport.LeadResponse) string { return l.Phone },
	},
	{
		ID:          "email",
		Header:      "Email",
		Render:      func(l transport.LeadResponse) any { return l.Email },
		SortValue:   func(l transport.LeadResponse) datatable.SortKey { return optionalString(l.Email) },
		SearchValue: func(l transport.LeadResponse) string { return l.Email },
	},
	{
		ID:          "sourcePlatform",
		Header:      "Source",
		Render:      func(l transport.LeadResponse) any { return l.SourcePlatform },
		SortValue:   func(l transport.LeadResponse) datatable.SortKey { return optionalString(l.SourcePlatform) },
		SearchValue: func(l transport.LeadResponse) string { return l.SourcePlatform },
	},
	{
		ID:          "campaignName",
		Header:      "Campaign",
		Render:      func(l transport.LeadResponse) any { return l.CampaignName },
		SortValue:   func(l transport.LeadResponse) datatable.SortKey { return optionalString(l.CampaignName) },
		SearchValue: func(l transport.LeadResponse) string { return l.CampaignName },
	},
	{
		ID:          "status",
		Header:      "Status",
		Render:      func(l transport.LeadResponse) any { return l.Status.Name },
		SortValue:   func(l transport.LeadResponse) datatable.SortKey { return datatable.String(l.Status.Name) },
		SearchValue: func(l transport.LeadResponse) string { return l.Status.Name },
	},
	{
		ID:          "assignedTo",
		Header:      "Assigned To",
		Render:      func(l transport.LeadResponse) any { return agentName(l) },
		SortValue:   func(l transport.LeadResponse) datatable.SortKey { return optionalString(agentName(l)) },
		SearchValue: agentName,
	},
	{
		ID:        "createdAt",
		Header:    "Created",
		Render:    func(l transport.LeadResponse) any { return l.CreatedAt },
		SortValue: func(l transport.LeadResponse) datatable.SortKey { return datatable.Time(l.CreatedAt) },
	},
	{
		ID:        "lastContactedAt",
		Header:    "Last Contacted",
		Render:    func(l transport.LeadResponse) any { return l.LastContactedAt },
		SortValue: func(l transport.LeadResponse) datatable.SortKey { return datatable.TimePtr(l.LastContactedAt) },
	},
}

// optionalString sorts blank values last.
func optionalString(s string) datatable.SortKey {
	if s == "" {
		return datatable.Null()
	}
	return datatable.String(s)
}
