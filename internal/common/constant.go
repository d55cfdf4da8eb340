package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// MinimumGridSize is the smallest number of cells a rendered grid has (3x3).
const MinimumGridSize = 9

// GridColumns is the fixed width of the grid.
const GridColumns = 3
