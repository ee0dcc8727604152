package apperr

import "net/http"

// HTTPStatus maps the Kind of err to the response status used at the HTTP
// boundary.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidOTP, KindExpired, KindInvalidCredentials, KindValidationFailed, KindAlreadyPremium:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindDeliveryFailed, KindGatewayError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
