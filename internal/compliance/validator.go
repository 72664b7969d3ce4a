package compliance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/worklink-ci/worklinkctl/internal/azdevops"
)

// ValidateRequest identifies the work item to confirm.
type ValidateRequest struct {
	// Organization is the Azure DevOps organization name.
	Organization string
	// Token is the personal access token.
	Token string
	// WorkItemID is the work item to look up.
	WorkItemID int
}

// Validator confirms work items exist before they are referenced.
type Validator struct {
	Connect Connector
	Logger  *slog.Logger
}

// Validate fetches the work item by id and classifies any failure. A nil
// item or one without an id counts as not found.
func (v *Validator) Validate(ctx context.Context, req ValidateRequest) error {
	logger := v.logger().With("work_item", req.WorkItemID)

	logger.Info("validating work item exists")
	api, err := v.Connect(ctx, req.Organization, req.Token)
	if err != nil {
		return NewFailure(KindConnection, "failed connection to azure devops", err)
	}

	item, err := api.GetWorkItem(ctx, req.WorkItemID)
	if err != nil {
		if isWorkItemNotFound(err) {
			return NewFailure(KindNotFound,
				fmt.Sprintf("work item %d does not exist in azure devops", req.WorkItemID), err)
		}
		return NewFailure(KindValidation,
			fmt.Sprintf("failed to validate work item %d", req.WorkItemID), err)
	}
	if item == nil || item.ID == 0 {
		return NewFailure(KindNotFound,
			fmt.Sprintf("work item %d does not exist in azure devops", req.WorkItemID), nil)
	}

	logger.Info("work item exists")
	return nil
}

func (v *Validator) logger() *slog.Logger {
	if v.Logger != nil {
		return v.Logger
	}
	return slog.Default()
}

// isWorkItemNotFound classifies fetch failures: a 404 status where the
// collaborator exposes one, otherwise the known message substrings.
func isWorkItemNotFound(err error) bool {
	var apiErr *azdevops.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "404") || strings.Contains(msg, "does not exist")
}
