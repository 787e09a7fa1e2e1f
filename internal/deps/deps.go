package deps

import (
	"fmt"
	"os/exec"
)

// Requirement names an external tool the build pipeline shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is the doctor-facing result of checking one requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries looks up each requirement's command on PATH. Tools that
// resolve report their location in Detail; missing or unconfigured ones
// report why.
func CheckBinaries(requirements []Requirement) []Status {
	statuses := make([]Status, len(requirements))
	for i, req := range requirements {
		statuses[i] = lookUp(req)
	}
	return statuses
}

func lookUp(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Command:     req.Command,
		Description: req.Description,
		Optional:    req.Optional,
	}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("%s not found on PATH", req.Command)
		return status
	}
	status.Available = true
	status.Detail = path
	return status
}
