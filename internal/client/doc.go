/*
Package client talks to the insight extraction service.

# Overview

A Client sends one request per call:

	POST {baseURL}/extract-insights
	Content-Type: application/json

	{"text":"..."}

and returns the response document unchanged as a types.InsightResult.

# Errors

Every failure is a *Error carrying a Kind:
  - KindTransport: no HTTP response was obtained (DNS, refused, timeout)
  - KindHTTP: the server answered with a non-2xx status
  - KindDecode: a 2xx response body was not valid JSON

KindHTTP errors always read "Failed to extract insights"; the status is
available on the Status field and the body is discarded. KindTransport
errors read as the underlying network error and unwrap to it.

# Configuration

The base URL is passed in Options at construction. A zero Timeout means
the call runs until the server answers or the context ends. There is no
retry.

# Example Usage

	c, err := client.New(client.Options{BaseURL: "http://localhost:5000"})
	if err != nil {
		return err
	}
	result, err := c.ExtractInsights(ctx, text)
	var cerr *client.Error
	if errors.As(err, &cerr) && cerr.Kind == client.KindHTTP {
		// cerr.Status holds the response code
	}
*/
package client
