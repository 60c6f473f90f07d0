package dto

// SubjectResponse resultado de una operación de ciclo de vida: trae el pedido o la reposición según Kind.
type SubjectResponse struct {
	Kind       string              `json:"kind"`
	Order      *OrderResponse      `json:"order,omitempty"`
	Reposition *RepositionResponse `json:"reposition,omitempty"`
}

// AreaResponse un área del registro.
type AreaResponse struct {
	Name        string `json:"name"`
	HoldsPieces bool   `json:"holds_pieces"`
	Originates  bool   `json:"originates_orders"`
}
