package session

func (s *Service) LockCount() int {
	return s.lockCount()
}
