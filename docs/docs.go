// Package docs Unexplained Archive API.
//
// Documentation of the Unexplained Archive API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//     Host: https://api.unexplained-archive.com
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/unexplained-archive/unexplained-archive-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the health of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/v1/case/{case_id} cases caseByID
// Gets a single case by ID.
// responses:
//   200: caseByIDResponse

// Shows a single case by the given {ID}
// swagger:response caseByIDResponse
type caseByIDResponseWrapper struct {
	// in:body
	Body models.Case
}

// swagger:route GET /api/v1/cases cases allCases
// Lists the cases, filterable by status and category.
// responses:
//   200: casesResponse

// Shows the matching cases
// swagger:response casesResponse
type casesResponseWrapper struct {
	// in:body
	Body []models.Case
}

// swagger:route GET /api/v1/wallet/{user_id} wallet walletByUserID
// Gets a user's wallet with recent transactions.
// responses:
//   200: walletResponse

// Shows the wallet and its recent ledger entries
// swagger:response walletResponse
type walletResponseWrapper struct {
	// in:body
	Body models.Wallet
}
