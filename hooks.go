package c8vm

// Hook is called by the Runner with its lock held. It may read and modify the
// CPU but must not call back into the Runner.
type Hook func(cpu *Cpu)

// AddBeforeFrameHook adds a hook that will run before every frame
func (r *Runner) AddBeforeFrameHook(h Hook) int {
	return r.addHook(&r.beforeFrameHooks, h)
}

// AddBeforeCycleHook adds a hook that will run before every cycle of the CPU
func (r *Runner) AddBeforeCycleHook(h Hook) int {
	return r.addHook(&r.beforeCycleHooks, h)
}

// AddAfterCycleHook adds a hook that will run after every cycle of the CPU
func (r *Runner) AddAfterCycleHook(h Hook) int {
	return r.addHook(&r.afterCycleHooks, h)
}

// AddAfterFrameHook adds a hook that will run after every frame
func (r *Runner) AddAfterFrameHook(h Hook) int {
	return r.addHook(&r.afterFrameHooks, h)
}

// AddErrorHook adds a hook that will run after a fault
func (r *Runner) AddErrorHook(h Hook) int {
	return r.addHook(&r.errorHooks, h)
}

// addHook may be called while Loop runs, the new hook applies from the next frame
func (r *Runner) addHook(hooks *[]Hook, h Hook) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	*hooks = append(*hooks, h)

	return len(*hooks)
}

func (r *Runner) runHooks(hooks []Hook) {
	for _, h := range hooks {
		h(r.cpu)
	}
}
