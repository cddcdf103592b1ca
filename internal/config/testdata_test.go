package config

const validConfigYAML = `
name: edge
listener:
  port: 8080
routes:
  - name: users
    methods: [GET, PUT]
    path: /users/{id}
    backend: http://users.internal:8080
    rewrite: /v1/users/{id}
    timeout: 5s
    circuitBreaker:
      enabled: true
      threshold: 3
  - name: files
    methods: [GET]
    path: /files/{*path}
    backend: http://files.internal:8080
  - name: health
    path: /health
    directResponse:
      status: 200
      body: ok
      headers:
        Content-Type: text/plain
rateLimit:
  enabled: true
  algorithm: fixed_window
  requests: 100
  window: 10s
`

const invalidConfigYAML = `
listener:
  port: 70000
routes:
  - name: broken
    path: /a/{*rest}/b
    backend: ftp://nowhere
`
