package lending

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/jhoicas/relief-ledger/internal/domain/entity"
)

// DefaultActivationExpr un LEND creado por un dueño de la bodega origen entra directo en Active.
const DefaultActivationExpr = `kind == "LEND" && requester_is_owner`

// ActivationEnv variables disponibles para la expresión de activación.
type ActivationEnv struct {
	Kind             string `expr:"kind"`
	RequesterIsOwner bool   `expr:"requester_is_owner"`
	HasDestination   bool   `expr:"has_destination"`
	Quantity         int64  `expr:"quantity"`
}

// ActivationPolicy decide el estado inicial de una transacción (Pending o Active).
// La expresión se compila una vez con expr-lang y debe devolver bool.
type ActivationPolicy struct {
	source  string
	program *vm.Program
}

// NewActivationPolicy compila la expresión; vacía usa DefaultActivationExpr.
func NewActivationPolicy(expression string) (*ActivationPolicy, error) {
	if expression == "" {
		expression = DefaultActivationExpr
	}
	program, err := expr.Compile(expression, expr.Env(ActivationEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compilar política de activación %q: %w", expression, err)
	}
	return &ActivationPolicy{source: expression, program: program}, nil
}

// MustActivationPolicy igual que NewActivationPolicy pero entra en pánico si la expresión no compila.
func MustActivationPolicy(expression string) *ActivationPolicy {
	p, err := NewActivationPolicy(expression)
	if err != nil {
		panic(err)
	}
	return p
}

// String devuelve la expresión fuente.
func (p *ActivationPolicy) String() string { return p.source }

// AutoActivate evalúa la política. Solo un dueño de la bodega origen puede saltar Pending:
// para cualquier otro solicitante el resultado es false sin importar la expresión.
func (p *ActivationPolicy) AutoActivate(kind entity.LendKind, requesterIsOwner, hasDestination bool, quantity int64) (bool, error) {
	if !requesterIsOwner {
		return false, nil
	}
	out, err := expr.Run(p.program, ActivationEnv{
		Kind:             string(kind),
		RequesterIsOwner: requesterIsOwner,
		HasDestination:   hasDestination,
		Quantity:         quantity,
	})
	if err != nil {
		return false, fmt.Errorf("evaluar política de activación: %w", err)
	}
	b, _ := out.(bool)
	return b, nil
}
