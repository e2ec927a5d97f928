package transport

import "github.com/google/uuid"

type KPIs struct {
	TotalLeadsUploaded    int     `json:"totalLeadsUploaded"`
	TotalConvertedLeads   int     `json:"totalConvertedLeads"`
	OverallConversionRate float64 `json:"overallConversionRate"`
	TotalActiveAgents     int     `json:"totalActiveAgents"`
}

type AgentConversion struct {
	AgentID             uuid.UUID `json:"agentId"`
	AgentName           string    `json:"agentName"`
	LeadsAssigned       int       `json:"leadsAssigned"`
	LeadsProcessedToday int       `json:"leadsProcessedToday"`
	ConvertedLeads      int       `json:"convertedLeads"`
	ConversionRate      float64   `json:"conversionRate"`
}

type SourceCount struct {
	SourcePlatform string `json:"sourcePlatform"`
	TotalLeads     int    `json:"totalLeads"`
}

type DashboardResponse struct {
	Range             string            `json:"range"`
	Campaign          string            `json:"campaign,omitempty"`
	KPIs              KPIs              `json:"kpis"`
	ConversionByAgent []AgentConversion `json:"conversionByAgent"`
	LeadsBySource     []SourceCount     `json:"leadsBySource"`
	Campaigns         []string          `json:"campaigns"`
}

type TrendPoint struct {
	Period         string  `json:"period"`
	TotalLeads     int     `json:"totalLeads"`
	ConvertedLeads int     `json:"convertedLeads"`
	ConversionRate float64 `json:"conversionRate"`
}

type TrendsResponse struct {
	Period string       `json:"period"`
	Points []TrendPoint `json:"points"`
}
