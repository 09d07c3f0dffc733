package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// The hierarchy endpoints are thin proxies over the external directory.
// They exist so the preference/filter UI has a single authenticated
// backend to talk to; there is no caching or invalidation here.

// HandleListDomains lists the domain hierarchy roots.
// (GET /api/v1/hierarchy/domains)
func (s *Server) HandleListDomains(c echo.Context) error {
	domains, err := s.Dir.ListDomains(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, domains)
}

// HandleListTalentPools lists the talent pools of one domain.
// (GET /api/v1/hierarchy/domains/:id/talent-pools)
func (s *Server) HandleListTalentPools(c echo.Context) error {
	pools, err := s.Dir.ListTalentPools(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, pools)
}

// HandleListSkills lists the skills of the talent pools named in the
// comma-separated talent_pools query parameter.
// (GET /api/v1/hierarchy/skills)
func (s *Server) HandleListSkills(c echo.Context) error {
	var ids []string
	if raw := c.QueryParam("talent_pools"); raw != "" {
		ids = strings.Split(raw, ",")
	}
	skills, err := s.Dir.ListSkills(c.Request().Context(), ids)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, skills)
}
