package allocationv1

import (
	"strings"

	"github.com/google/uuid"

	"netalloc/pkg/apperror"
)

// Validate проверяет форму сети. Содержимое матрицы проверяется при разборе.
func (n *Network) Validate() error {
	if n == nil {
		return apperror.NewWithField(apperror.CodeNilInput, "network is required", "network")
	}
	if len(n.Capacity) == 0 {
		return apperror.NewWithField(apperror.CodeInvalidTopology, "capacity matrix is empty", "network.capacity")
	}
	if n.IndexBase != nil && *n.IndexBase != 0 && *n.IndexBase != 1 {
		return apperror.NewWithField(apperror.CodeInvalidArgument, "index base must be 0 or 1", "network.indexBase")
	}
	return nil
}

func (o *SearchOptions) Validate() error {
	if o == nil {
		return nil
	}
	switch {
	case o.MaxHops < 0:
		return apperror.NewWithField(apperror.CodeInvalidArgument, "max hops must not be negative", "options.maxHops")
	case o.Workers < 0:
		return apperror.NewWithField(apperror.CodeInvalidArgument, "workers must not be negative", "options.workers")
	case o.MaxScenarios < 0:
		return apperror.NewWithField(apperror.CodeInvalidArgument, "max scenarios must not be negative", "options.maxScenarios")
	case o.TimeoutMs < 0:
		return apperror.NewWithField(apperror.CodeInvalidArgument, "timeout must not be negative", "options.timeoutMs")
	}
	switch strings.ToLower(o.Coupling) {
	case "", "reference", "directed":
		return nil
	default:
		return apperror.NewWithField(apperror.CodeInvalidArgument, "coupling must be reference or directed", "options.coupling")
	}
}

func (r *AllocateRequest) Validate() error {
	if err := r.Network.Validate(); err != nil {
		return err
	}
	return r.Options.Validate()
}

func (r *EnumeratePathsRequest) Validate() error {
	if err := r.Network.Validate(); err != nil {
		return err
	}
	n := len(r.Network.Capacity)
	if r.Source < 0 || r.Source >= n {
		return apperror.NewWithField(apperror.CodeInvalidNode, "source is out of range", "source")
	}
	if r.Destination < 0 || r.Destination >= n {
		return apperror.NewWithField(apperror.CodeInvalidNode, "destination is out of range", "destination")
	}
	if r.MaxHops < 0 {
		return apperror.NewWithField(apperror.CodeInvalidArgument, "max hops must not be negative", "maxHops")
	}
	return nil
}

func (r *GetRunRequest) Validate() error {
	return validateRunID(r.ID)
}

func (r *DeleteRunRequest) Validate() error {
	return validateRunID(r.ID)
}

func (r *ListRunsRequest) Validate() error {
	if r.Limit < 0 || r.Offset < 0 {
		return apperror.New(apperror.CodeInvalidPagination, "limit and offset must not be negative")
	}
	return nil
}

func validateRunID(id string) error {
	if id == "" {
		return apperror.NewWithField(apperror.CodeInvalidArgument, "id is required", "id")
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewWithField(apperror.CodeInvalidArgument, "id must be a UUID", "id")
	}
	return nil
}
