// Package secret provides a small, dependency-light secret resolution layer.
//
// It supports:
//   - Strict environment expansion (see ExpandEnvStrict)
//   - Pluggable secret providers (see Provider + Registry)
//   - Resolving secret references in configuration values (see Resolver)
//
// References use the prefix "secretref:":
//   - Full value:  secretref:bws:project/dotenv/key/OPENAI_API_KEY
//   - Inline use:  Bearer secretref:bws:project/dotenv/key/OPENAI_API_KEY
//
// credential.Manager.Register resolves the references in a credential
// kind's Initialize input through a Resolver set with
// credential.WithSecretResolver, so a credential input and a plain
// config value share one reference syntax. Rotation inputs are not
// resolved.
package secret
