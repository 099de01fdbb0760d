package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const employeeIDKey = "employee_id"

// EmployeeContext reads the employee identity propagated by the upstream
// auth gateway. Role gating happens there; this service only needs the id
// for recorded-by references and managed-lot resolution.
func (s *Server) EmployeeContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("X-Employee-ID"))
		if raw != "" {
			if id, err := snowflake.ParseString(raw); err == nil {
				c.Set(employeeIDKey, id)
			}
		}
		c.Next()
	}
}

func employeeIDFromContext(c *gin.Context) (snowflake.ID, bool) {
	v, ok := c.Get(employeeIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(snowflake.ID)
	return id, ok
}
