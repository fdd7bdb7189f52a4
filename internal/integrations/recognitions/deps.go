package recognitions

import "recogstats/internal/httpx"

var externalHTTPClient = httpx.ExternalHTTPClient()
