package httpkit

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/datatable"
)

const dateLayout = "2006-01-02"

// BindListState reads the table state (q, sort, dir, page, pageSize,
// selected) from the query string. Malformed numbers fall back to defaults.
func BindListState(c *gin.Context) datatable.State {
	var state datatable.State
	if err := c.ShouldBindQuery(&state); err != nil {
		state = datatable.State{
			Query:      c.Query("q"),
			SortColumn: c.Query("sort"),
			SortDir:    c.Query("dir"),
			Selected:   c.QueryArray("selected"),
		}
	}
	state.Query = strings.TrimSpace(state.Query)
	return state
}

// ParseUUIDParam parses a path parameter as a UUID.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.BadRequest("invalid " + name)
	}
	return id, nil
}

// OptionalUUIDQuery parses an optional UUID query parameter.
func OptionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.BadRequest("invalid " + name)
	}
	return &id, nil
}

// OptionalDateQuery parses an optional YYYY-MM-DD query parameter in UTC.
// With endOfDay the last instant of that day is returned.
func OptionalDateQuery(c *gin.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, apperr.BadRequest("invalid " + name + ", expected YYYY-MM-DD")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
