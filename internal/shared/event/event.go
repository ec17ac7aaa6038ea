package event

// FullNameMaxLength bounds a trainee name from the issuing request through
// every consumer of these messages. Validation tags repeat it as max=120.
const FullNameMaxLength = 120
