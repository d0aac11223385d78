// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the router's parameter extraction, body decoding and the
typed identity/tenant values placed on the context by middleware.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/validate"
)

// maxBodyBytes bounds JSON bodies; auth payloads are tiny.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - writer: used by http.MaxBytesReader to signal oversize bodies
  - request: *http.Request
  - target: pointer to the destination struct

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(writer, request.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
RequiredIdentity returns the identity attached by the authenticator.

Returns:
  - ctxutil.Identity: user and session ids of the caller
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredIdentity(request *http.Request) (ctxutil.Identity, error) {
	identity, ok := ctxutil.GetIdentity(request.Context())
	if !ok {
		return ctxutil.Identity{}, apperr.Unauthorized("Unauthorized")
	}
	return identity, nil
}

/*
RequiredTenant returns the organization resolved for this request.

Returns:
  - ctxutil.TenantContext: organization id and slug
  - error: apperr.NotFound if no tenant resolver ran on this route
*/
func RequiredTenant(request *http.Request) (ctxutil.TenantContext, error) {
	tenant, ok := ctxutil.GetTenant(request.Context())
	if !ok {
		return ctxutil.TenantContext{}, apperr.NotFoundMessage("No organization found")
	}
	return tenant, nil
}
