package googleanalytics

import (
	"errors"
	"strings"

	"alfreds-toolbox/domain/model"

	"google.golang.org/api/googleapi"
)

// ClassifyError maps a fetch failure onto the analytics error kinds shown to admins.
func ClassifyError(err error) *model.AnalyticsError {
	if err == nil {
		return nil
	}
	var classified *model.AnalyticsError
	if errors.As(err, &classified) {
		return classified
	}
	if errors.Is(err, model.ErrConfigurationMissing) {
		return &model.AnalyticsError{Kind: model.AnalyticsConfigurationMissing, Message: "Google Analytics ist nicht konfiguriert", Err: err}
	}

	text := err.Error()
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		text += " " + gerr.Body
		for _, item := range gerr.Errors {
			text += " " + item.Reason
		}
	}
	switch {
	case strings.Contains(text, "PERMISSION_DENIED"):
		return &model.AnalyticsError{Kind: model.AnalyticsPermissionDenied, Err: err}
	case strings.Contains(text, "INVALID_ARGUMENT"):
		return &model.AnalyticsError{Kind: model.AnalyticsInvalidProperty, Err: err}
	default:
		return &model.AnalyticsError{Kind: model.AnalyticsAPIError, Message: err.Error(), Err: err}
	}
}

// StatusFromCode maps the probe HTTP status to a property status.
func StatusFromCode(code int) model.PropertyStatus {
	switch code {
	case 200:
		return model.PropertySuccess
	case 403:
		return model.PropertyPermissionDenied
	case 400, 404:
		return model.PropertyInvalid
	default:
		return model.PropertyError
	}
}
