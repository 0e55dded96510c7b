package htlcv1

import (
	"strings"

	"github.com/ark-network/htlc/internal/core/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var kindToCode = map[domain.ErrorKind]codes.Code{
	domain.ErrorKindInvalidTimeout:    codes.InvalidArgument,
	domain.ErrorKindNotAuthorized:     codes.PermissionDenied,
	domain.ErrorKindNotFound:          codes.NotFound,
	domain.ErrorKindExpired:           codes.FailedPrecondition,
	domain.ErrorKindNotExpired:        codes.FailedPrecondition,
	domain.ErrorKindHashMismatch:      codes.InvalidArgument,
	domain.ErrorKindEncodingError:     codes.InvalidArgument,
	domain.ErrorKindInvalidIdentifier: codes.InvalidArgument,
	domain.ErrorKindConsensusFailed:   codes.Aborted,
	domain.ErrorKindTimeout:           codes.DeadlineExceeded,
	domain.ErrorKindAlreadyTerminal:   codes.FailedPrecondition,
	domain.ErrorKindInvalidArgument:   codes.InvalidArgument,
}

var codeToKind = map[codes.Code]domain.ErrorKind{
	codes.InvalidArgument:    domain.ErrorKindInvalidArgument,
	codes.PermissionDenied:   domain.ErrorKindNotAuthorized,
	codes.NotFound:           domain.ErrorKindNotFound,
	codes.Aborted:            domain.ErrorKindConsensusFailed,
	codes.DeadlineExceeded:   domain.ErrorKindTimeout,
	codes.FailedPrecondition: domain.ErrorKindAlreadyTerminal,
}

// ToStatus converts err to a grpc status error. The message of domain errors
// is prefixed by their kind, so that clients can restore it.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	kind := domain.KindOf(err)
	code, ok := kindToCode[kind]
	if !ok {
		return status.Error(codes.Internal, err.Error())
	}
	return status.Error(code, kind.String()+": "+domain.ReasonOf(err))
}

// FromStatus restores the domain error carried by a grpc status error.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	msg := st.Message()
	if prefix, reason, found := strings.Cut(msg, ": "); found {
		if kind := domain.ParseErrorKind(prefix); kind != domain.ErrorKindUndefined {
			return domain.NewError(kind, "%s", reason)
		}
	}
	if kind, ok := codeToKind[st.Code()]; ok {
		return domain.NewError(kind, "%s", msg)
	}
	return err
}
