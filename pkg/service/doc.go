/*
Package service implements the application layer shared by the transports.

It assembles a controller around a capability, keeps every classified outcome
in a journal, and guards attempts with an optional distributed gate so that
replicated deployments hand each resource to a platform handler once. The
HTTP and MCP adapters and the CLI all consume the same Service through
ports.OpenService.
*/
package service
