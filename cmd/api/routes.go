package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"placement-portal/internal/auth"
	"placement-portal/internal/httpapi"
	"placement-portal/internal/rbac"
	"placement-portal/pkg/logger"
	"placement-portal/pkg/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// newRouter builds the engine. Order matters: the gate attaches the principal
// that Enforce reads, and both also run for unmatched paths.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func newRouter(h httpapi.Handlers, authn *auth.Authenticator, authorizer *rbac.Authorizer, metrics *telemetry.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(telemetry.Middleware(metrics))
	r.Use(auth.Gate(auth.GateConfig{
		Authenticator: authn,
		Public:        authorizer,
		Bypass:        rbac.BypassPaths(),
		Metrics:       metrics,
	}))
	r.Use(rbac.Enforce(authorizer, metrics))

	r.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))
	h.Mount(r)
	r.NoRoute(httpapi.NoRoute)
	return r
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the route authorization table",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := rbac.NewAuthorizer(rbac.DefaultRules())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATTERN\tACCESS")
		for _, rule := range a.Rules() {
			method := rule.Method
			if method == "" {
				method = "*"
			}
			access := "authenticated"
			switch {
			case rule.Public:
				access = "public"
			case len(rule.Roles) > 0:
				access = strings.Join(auth.RoleStrings(rule.Roles), ",")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", method, rule.Pattern, access)
		}
		return w.Flush()
	},
}
