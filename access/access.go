// Package access resolves whether a request may view a public dashboard and
// which variant of the project to serialize. The precedence between the
// overlapping authorization mechanisms (team-role session, legacy access
// token, share policy with tokens, password) is an explicit ordered list of
// branches evaluated top to bottom with early return.
package access

import (
	"errors"
	"net/http"
	"time"

	M "github.com/Mu-L/chartbrew/model/model"
	"github.com/Mu-L/chartbrew/token"
	log "github.com/sirupsen/logrus"
)

// Variant selects how the granted project is serialized.
type Variant string

const (
	// VariantFull is the raw project, reserved for team members. The
	// password field is still cleared before serialization.
	VariantFull Variant = "full"
	// VariantProcessed is the project with the password stripped.
	VariantProcessed Variant = "processed"
	// VariantWithVars is the processed project with the approved variable
	// set substituted into chart data requests.
	VariantWithVars Variant = "policyVariantWithVars"
)

// Request carries the credentials and variables of one inbound dashboard
// request. TeamRole is nil when there is no usable session identity.
type Request struct {
	TeamRole    *M.TeamRole
	AccessToken string
	Token       string
	Pass        string
	Variables   M.VariableSet
}

// Decision is the engine's verdict. On a grant, Variables holds the set the
// caller should inject when Variant is VariantWithVars. On a deny, Status
// and Reason describe the rejection.
type Decision struct {
	Granted   bool
	Variant   Variant
	Variables M.VariableSet
	Status    int
	Reason    string
}

func grant(variant Variant, variables M.VariableSet) Decision {
	return Decision{Granted: true, Variant: variant, Variables: variables}
}

func deny(status int, reason string) Decision {
	return Decision{Status: status, Reason: reason}
}

// Resolve evaluates the access branches for a dashboard request. policy is
// nil when no share policy row exists for the project. The evaluation is
// stateless and side-effect free; repeating it with the same inputs yields
// the same decision.
func Resolve(project *M.Project, policy *M.SharePolicy, req *Request, secret string) Decision {
	logCtx := log.WithFields(log.Fields{"project_id": project.ID, "brew_name": project.BrewName})

	// Branch 1: authenticated team member. Any role on the dashboard's
	// team grants the full variant.
	if req.TeamRole != nil && req.TeamRole.Role != "" {
		return grant(VariantFull, nil)
	}

	// Branch 2: legacy access token. Bypasses the share policy entirely,
	// including variable filtering. Verification failure falls through
	// instead of denying.
	if req.AccessToken != "" {
		claims, err := token.VerifyShareToken(req.AccessToken, secret)
		if err == nil && claims.GrantsLegacyAccess(project.ID) {
			if len(req.Variables) > 0 {
				return grant(VariantWithVars, req.Variables)
			}
			return grant(VariantProcessed, nil)
		}
		logCtx.WithError(err).Debug("Legacy access token rejected, continuing with share policy flow.")
	}

	// Branch 3: share policy evaluation.
	if policy != nil {
		if policy.Visibility == M.SharePolicyVisibilityDisabled {
			return deny(http.StatusForbidden, "Share policy is disabled")
		}

		// Policy tokens never open a non-public dashboard.
		if !project.Public {
			return deny(http.StatusUnauthorized, "Not authorized to access this page")
		}

		if policy.RequiresToken() {
			return resolveRestricted(project, policy, req, secret)
		}
		// Public tier falls through to the legacy branch; the policy
		// allow-list still filters any applied variables.
	}

	// Branch 4: no policy, or a public-tier policy falling through.
	if !project.Public {
		return deny(http.StatusUnauthorized, "Not authorized to access this page")
	}

	variables := M.MergeVariablesWithPolicy(req.Variables, policy)
	if len(variables) > 0 {
		if project.PasswordProtected && !project.CheckPassword(req.Pass) {
			return deny(http.StatusForbidden, "Enter the correct password")
		}
		return grant(VariantWithVars, variables)
	}

	if !project.PasswordProtected {
		return grant(VariantProcessed, nil)
	}
	if project.CheckPassword(req.Pass) {
		return grant(VariantProcessed, nil)
	}
	return deny(http.StatusForbidden, "Enter the correct password")
}

// resolveRestricted handles the token-required policy tier. An invalid or
// expired share token is terminal here; there is no fallback to weaker
// branches.
func resolveRestricted(project *M.Project, policy *M.SharePolicy, req *Request, secret string) Decision {
	if req.Token == "" {
		// Password-only fallback kept for dashboards shared before
		// policies existed.
		if project.Public && project.PasswordProtected && project.CheckPassword(req.Pass) {
			return grant(VariantProcessed, nil)
		}
		return deny(http.StatusUnauthorized, "Access token required")
	}

	claims, err := token.VerifyShareToken(req.Token, secret)
	if err != nil {
		return deny(http.StatusUnauthorized, "Invalid or expired token")
	}
	if err := claims.ValidForProject(project.ID, time.Now()); err != nil {
		// A well-formed token for the wrong subject reads differently
		// than one past its expiry.
		if errors.Is(err, token.ErrTokenExpired) {
			return deny(http.StatusUnauthorized, "Invalid or expired token")
		}
		return deny(http.StatusUnauthorized, "Invalid token")
	}

	// A valid token does not waive the dashboard password.
	if project.PasswordProtected && !project.CheckPassword(req.Pass) {
		return deny(http.StatusForbidden, "Enter the correct password")
	}

	variables := M.MergeVariablesWithPolicy(req.Variables, policy)
	if len(variables) > 0 {
		return grant(VariantWithVars, variables)
	}
	return grant(VariantProcessed, nil)
}
