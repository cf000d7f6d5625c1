package riskgatev1

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ppiankov/riskgate/internal/model"
)

// CodeFor maps a taxonomy error to a gRPC status code.
func CodeFor(err error) codes.Code {
	switch model.Outcome(err) {
	case "":
		return codes.OK
	case model.OutcomeInvalidProfile:
		return codes.InvalidArgument
	case model.OutcomeUndefinedProfile:
		return codes.FailedPrecondition
	case model.OutcomeNotLoaded, model.OutcomeConfigLoadFailure:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// ToStatus converts err to a status error whose message starts with the
// outcome label, e.g. "invalid_profile: sia_complexity out of domain".
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	return status.Error(CodeFor(err), model.Outcome(err)+": "+err.Error())
}

// FromStatus restores the taxonomy sentinel from a status error produced
// by ToStatus. Other errors are returned unchanged.
func FromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.OK {
		return err
	}
	label, msg, found := strings.Cut(st.Message(), ": ")
	if !found {
		return err
	}
	sentinel := model.SentinelFor(label)
	if sentinel == nil {
		return err
	}
	return goerr.Wrap(sentinel, msg, goerr.V("grpc_code", st.Code().String()))
}
