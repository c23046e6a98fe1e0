// Command authz-gate runs the RBAC+ABAC authorization decision service.
package main

import "github.com/authzgate/authzgate/cmd/authz-gate/cmd"

func main() {
	cmd.Execute()
}
