// Package server hosts vnav routers for real browsers.
//
// Every page request is rendered on the server by a router running against
// an in-memory history, so the first paint needs no JavaScript. The page
// then loads a thin client that opens a WebSocket live session. The session
// owns one router for the tab: its history backend mirrors the browser's
// history stack, sending pushState, replaceState and location.assign
// commands down the socket and feeding popstate events back in. Links
// marked with data-link are intercepted and become navigate requests.
//
// # Endpoints
//
//	GET  /_vnav/client.js   thin client
//	GET  /_vnav/live        WebSocket live session (?url=<location>)
//	POST /_vnav/logout      clear the session cookie
//	GET  /metrics           Prometheus metrics (configurable)
//	GET  /*                 server-rendered pages
//
// # Wire Protocol
//
// Messages are JSON objects with a "type" field.
//
//	client → server: navigate{target}, popstate{url, state}
//	server → client: push{url, state}, replace{url, state}, assign{url},
//	                 render{html, title, route, phase}, active{route, active},
//	                 error{error}
package server
