package core

type EntityConfBase struct {
	Disabled bool
}

func (this *EntityConfBase) GetDisabled() bool {
	return this.Disabled
}

func (this *EntityConfBase) SetDisabled(dis bool) {
	this.Disabled = dis
}
